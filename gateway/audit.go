package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one line in the moderation audit trail: who did what to
// which account, and whether it was an execution or an undo.
type AuditEvent struct {
	EventID      string     `json:"event_id"`
	Timestamp    time.Time  `json:"ts"`
	Actor        string     `json:"actor"`
	Kind         string     `json:"kind"` // execute | undo
	ActionType   ActionType `json:"action_type"`
	TargetEmail  string     `json:"target_email"`
	Reason       string     `json:"reason,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
	Outcome      string     `json:"outcome"`
	Error        string     `json:"error,omitempty"`
}

// JSONLAuditSink appends audit events to a size-rotated JSONL file.
type JSONLAuditSink struct {
	Path           string
	RotateMaxBytes int64

	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	size int64
}

func NewJSONLAuditSink(path string, rotateMaxBytes int64) (*JSONLAuditSink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("missing audit jsonl path")
	}
	if rotateMaxBytes <= 0 {
		rotateMaxBytes = 100 * 1024 * 1024
	}
	s := &JSONLAuditSink{
		Path:           path,
		RotateMaxBytes: rotateMaxBytes,
	}
	if err := s.openLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONLAuditSink) Emit(ctx context.Context, e AuditEvent) error {
	_ = ctx
	if s == nil {
		return nil
	}
	if strings.TrimSpace(e.EventID) == "" {
		e.EventID = "evt_" + uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotateIfNeededLocked(int64(len(b)) + 1); err != nil {
		return err
	}
	if s.w == nil {
		return fmt.Errorf("audit sink is not initialized")
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	s.size += int64(len(b)) + 1
	return nil
}

func (s *JSONLAuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w != nil {
		_ = s.w.Flush()
		s.w = nil
	}
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}

func (s *JSONLAuditSink) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	s.f = f
	s.w = bufio.NewWriter(f)
	s.size = st.Size()
	return nil
}

func (s *JSONLAuditSink) rotateIfNeededLocked(incoming int64) error {
	if s.f == nil {
		if err := s.openLocked(); err != nil {
			return err
		}
	}
	if s.size+incoming <= s.RotateMaxBytes {
		return nil
	}
	if s.w != nil {
		_ = s.w.Flush()
	}
	if s.f != nil {
		_ = s.f.Close()
	}
	rotated := fmt.Sprintf("%s.%s", s.Path, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.Rename(s.Path, rotated); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.f = nil
	s.w = nil
	s.size = 0
	return s.openLocked()
}
