package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/steveyegge/wgtracker/internal/errs"
)

// SnapshotVersion is the format written by Save. The first line of a
// snapshot file is its version number; the rest is the JSON document.
const SnapshotVersion = 1

// snapshot is the persisted form of State. The label cache and repo id are
// not part of it.
type snapshot struct {
	Pending               []taskEnvelope `json:"pending"`
	Staged                []taskEnvelope `json:"staged"`
	HandledComments       []string       `json:"handled_comment_urls"`
	HandledDecisionIssues []int          `json:"handled_decision_issues"`
	WGWatermark           time.Time      `json:"wg_watermark"`
	DecisionsWatermark    time.Time      `json:"decisions_watermark"`
}

type taskEnvelope struct {
	Type TaskKind        `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode returns the versioned snapshot of s.
func (s *State) Encode() ([]byte, error) {
	snap := snapshot{
		HandledComments:       make([]string, 0, len(s.handledComments)),
		HandledDecisionIssues: make([]int, 0, len(s.handledDecisionIssues)),
		WGWatermark:           s.wgWatermark,
		DecisionsWatermark:    s.decisionsWatermark,
	}

	var err error
	if snap.Pending, err = encodeTasks(s.pending); err != nil {
		return nil, err
	}
	if snap.Staged, err = encodeTasks(s.staged); err != nil {
		return nil, err
	}
	for url := range s.handledComments {
		snap.HandledComments = append(snap.HandledComments, url)
	}
	slices.Sort(snap.HandledComments)
	for number := range s.handledDecisionIssues {
		snap.HandledDecisionIssues = append(snap.HandledDecisionIssues, number)
	}
	slices.Sort(snap.HandledDecisionIssues)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing state: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", SnapshotVersion)
	buf.Write(data)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Decode restores a State from a snapshot produced by Encode. The transient
// caches are left unloaded.
func Decode(data []byte) (*State, error) {
	header, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok {
		return nil, errs.Errorf(errs.KindParse, "state file has no version line")
	}

	version, err := strconv.Atoi(string(bytes.TrimSpace(header)))
	if err != nil {
		return nil, errs.Parse("could not parse state file version", err)
	}
	if version != SnapshotVersion {
		return nil, errs.Errorf(errs.KindParse, "unsupported state file version %d", version)
	}

	var snap snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, errs.Parse(fmt.Sprintf("could not parse state file v%d", version), err)
	}

	s := New(snap.WGWatermark)
	s.decisionsWatermark = snap.DecisionsWatermark
	if s.pending, err = decodeTasks(snap.Pending); err != nil {
		return nil, err
	}
	if s.staged, err = decodeTasks(snap.Staged); err != nil {
		return nil, err
	}
	for _, url := range snap.HandledComments {
		s.handledComments[url] = true
	}
	for _, number := range snap.HandledDecisionIssues {
		s.handledDecisionIssues[number] = true
	}
	return s, nil
}

// Save writes the snapshot to tempPath, syncs it, and renames it over path,
// so path always holds either the previous or the new snapshot.
func (s *State) Save(path, tempPath string) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	if err := writeSynced(tempPath, data); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("committing state file: %w", err)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load reads and decodes the snapshot at path.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	return Decode(data)
}

// LoadOrNew loads the snapshot at path, or returns New(start) if there is
// none yet.
func LoadOrNew(path string, start time.Time) (*State, error) {
	s, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(start), nil
	}
	return s, err
}

func encodeTasks(tasks []Task) ([]taskEnvelope, error) {
	envelopes := make([]taskEnvelope, 0, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("serializing %s task: %w", t.Kind(), err)
		}
		envelopes = append(envelopes, taskEnvelope{Type: t.Kind(), Data: data})
	}
	return envelopes, nil
}

func decodeTasks(envelopes []taskEnvelope) ([]Task, error) {
	var tasks []Task
	for i, env := range envelopes {
		t, err := decodeTask(env)
		if err != nil {
			return nil, errs.Parse(fmt.Sprintf("task %d", i), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeTask(env taskEnvelope) (Task, error) {
	switch env.Type {
	case KindPollWGIssues:
		return decodeAs[PollWGIssues](env.Data)
	case KindFetchIssueComments:
		return decodeAs[FetchIssueComments](env.Data)
	case KindProcessComment:
		return decodeAs[ProcessComment](env.Data)
	case KindPollDecisionIssues:
		return decodeAs[PollDecisionIssues](env.Data)
	case KindLoadDecisionLabels:
		return decodeAs[LoadDecisionLabels](env.Data)
	case KindEnsureLabel:
		return decodeAs[EnsureLabel](env.Data)
	case KindFileDecisionIssue:
		return decodeAs[FileDecisionIssue](env.Data)
	case KindLoadDecisionsRepoID:
		return decodeAs[LoadDecisionsRepoID](env.Data)
	case KindFileBug:
		return decodeAs[FileBug](env.Data)
	case KindFileBugWithDetails:
		return decodeAs[FileBugWithDetails](env.Data)
	case KindRemoveBugLabel:
		return decodeAs[RemoveBugLabel](env.Data)
	case KindCloseIssue:
		return decodeAs[CloseIssue](env.Data)
	case KindAddIssueComment:
		return decodeAs[AddIssueComment](env.Data)
	default:
		return nil, fmt.Errorf("unknown task type %q", env.Type)
	}
}

func decodeAs[T Task](data json.RawMessage) (Task, error) {
	var t T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
	}
	return t, nil
}
