package github

const updatedIssuesQuery = `query UpdatedIssues($owner: String!, $name: String!, $since: DateTime!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    issues(first: $first, after: $after, filterBy: {since: $since}, orderBy: {field: UPDATED_AT, direction: ASC}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        number
        title
        updatedAt
        labels(first: 100) { nodes { name color } }
      }
    }
  }
}`

const issueCommentsQuery = `query IssueComments($owner: String!, $name: String!, $number: Int!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      comments(first: $first, after: $after) {
        pageInfo { hasNextPage endCursor }
        nodes { url createdAt bodyText }
      }
    }
  }
}`

const repoLabelsQuery = `query RepoLabels($owner: String!, $name: String!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    labels(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes { id name }
    }
  }
}`

const repoIDQuery = `query RepoID($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) { id }
}`

const issueContentQuery = `query IssueContent($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) { title body url }
  }
}`

const createLabelMutation = `mutation CreateLabel($repositoryId: ID!, $name: String!, $color: String!) {
  createLabel(input: {repositoryId: $repositoryId, name: $name, color: $color}) {
    label { id }
  }
}`

const createIssueMutation = `mutation CreateIssue($repositoryId: ID!, $title: String!, $body: String, $labelIds: [ID!]) {
  createIssue(input: {repositoryId: $repositoryId, title: $title, body: $body, labelIds: $labelIds}) {
    issue { id }
  }
}`

const removeLabelsMutation = `mutation RemoveLabels($labelableId: ID!, $labelIds: [ID!]!) {
  removeLabelsFromLabelable(input: {labelableId: $labelableId, labelIds: $labelIds}) {
    clientMutationId
  }
}`

const closeIssueMutation = `mutation CloseIssue($issueId: ID!) {
  closeIssue(input: {issueId: $issueId}) {
    issue { id }
  }
}`

const addCommentMutation = `mutation AddComment($subjectId: ID!, $body: String!) {
  addComment(input: {subjectId: $subjectId, body: $body}) {
    clientMutationId
  }
}`

// labelPreview enables label mutations on the GraphQL schema.
const labelPreview = "application/vnd.github.bane-preview+json"
