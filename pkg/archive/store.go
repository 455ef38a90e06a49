package archive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/livemind/livemind/pkg/jsontime"
	"github.com/livemind/livemind/pkg/kv"
)

// DefaultUserSessionLimit caps SessionsByUser, newest first.
const DefaultUserSessionLimit = 50

// Store persists sessions and messages in a kv.Store.
//
// Key layout:
//
//	session/<id>                     -> msgpack(Session)
//	user/<userID>/<invTS>/<id>       -> <id>         (newest-first index)
//	message/<sessionID>/<seq %08d>   -> msgpack(Message)
//	seq/<sessionID>                  -> next sequence number (decimal)
type Store struct {
	kv kv.Store

	// seqMu serializes sequence allocation; messages within a session must
	// get strictly increasing numbers even under concurrent appends.
	seqMu sync.Mutex
}

// NewStore creates a Store on top of the given key-value store.
func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

// CreateSession records a new active session and returns it. clientIP and
// userAgent come from the request, not from the client-supplied metadata.
func (s *Store) CreateSession(ctx context.Context, meta SessionMeta, clientIP, userAgent string) (*Session, error) {
	if meta.UserID == "" {
		return nil, errors.New("archive: user id is required")
	}
	now := jsontime.Now()
	sess := &Session{
		ID:               uuid.NewString(),
		UserID:           meta.UserID,
		ModelName:        meta.ModelName,
		VoiceName:        meta.VoiceName,
		CameraEnabled:    meta.CameraEnabled,
		MicEnabled:       meta.MicEnabled,
		ClientIdentifier: meta.ClientIdentifier,
		ClientIP:         clientIP,
		UserAgent:        userAgent,
		Latitude:         meta.Latitude,
		Longitude:        meta.Longitude,
		DeviceType:       meta.DeviceType,
		ScreenRes:        meta.ScreenRes,
		Status:           StatusActive,
		StartedAt:        now,
	}
	if err := s.putSession(ctx, sess); err != nil {
		return nil, err
	}
	idx := kv.Key{"user", sess.UserID, invertedStamp(now.Time()), sess.ID}
	if err := s.kv.Set(ctx, idx, []byte(sess.ID)); err != nil {
		return nil, err
	}
	return sess, nil
}

// Close finalizes a session: terminal status, ended_at, duration, and the
// last error message if any. It is a no-op beyond overwriting those fields;
// repeated closes keep the first ended_at.
func (s *Store) Close(ctx context.Context, id string, status Status, lastError string) error {
	if !validStatus(status) {
		return fmt.Errorf("archive: invalid status %q", status)
	}
	sess, err := s.getSession(ctx, id)
	if err != nil {
		return err
	}
	sess.Status = status
	if lastError != "" {
		sess.LastError = lastError
	}
	if sess.EndedAt == nil {
		now := jsontime.Now()
		sess.EndedAt = &now
		sess.DurationSeconds = now.Sub(sess.StartedAt).Seconds()
	}
	return s.putSession(ctx, sess)
}

// AppendMessage records one finalized transcript entry and returns it.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, sender Sender, text string) (*Message, error) {
	if text == "" {
		return nil, errors.New("archive: message text is required")
	}
	if !validSender(sender) {
		return nil, fmt.Errorf("archive: invalid sender %q", sender)
	}
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return nil, err
	}

	seq, err := s.nextSeq(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Text:      text,
		Seq:       seq,
		CreatedAt: jsontime.Now(),
	}
	raw, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, err
	}
	key := kv.Key{"message", sessionID, fmt.Sprintf("%08d", seq)}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return nil, err
	}
	return msg, nil
}

// SessionsByUser returns up to limit sessions for a user, newest first.
// limit <= 0 uses DefaultUserSessionLimit.
func (s *Store) SessionsByUser(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = DefaultUserSessionLimit
	}
	var out []Session
	for e, err := range s.kv.List(ctx, kv.Key{"user", userID}) {
		if err != nil {
			return nil, err
		}
		sess, err := s.getSession(ctx, string(e.Value))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *sess)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Session returns one session with its full ordered transcript.
func (s *Store) Session(ctx context.Context, id string) (*SessionDetail, error) {
	sess, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &SessionDetail{Metadata: *sess}
	for e, err := range s.kv.List(ctx, kv.Key{"message", id}) {
		if err != nil {
			return nil, err
		}
		var msg Message
		if err := msgpack.Unmarshal(e.Value, &msg); err != nil {
			return nil, fmt.Errorf("archive: decode message %s: %w", e.Key, err)
		}
		detail.Messages = append(detail.Messages, msg)
	}
	return detail, nil
}

func (s *Store) putSession(ctx context.Context, sess *Session) error {
	raw, err := msgpack.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, kv.Key{"session", sess.ID}, raw)
}

func (s *Store) getSession(ctx context.Context, id string) (*Session, error) {
	raw, err := s.kv.Get(ctx, kv.Key{"session", id})
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := msgpack.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("archive: decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) nextSeq(ctx context.Context, sessionID string) (int, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	key := kv.Key{"seq", sessionID}
	var seq int
	raw, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		seq = 0
	case err != nil:
		return 0, err
	default:
		if _, err := fmt.Sscanf(string(raw), "%d", &seq); err != nil {
			return 0, fmt.Errorf("archive: corrupt sequence for %s: %w", sessionID, err)
		}
	}
	if err := s.kv.Set(ctx, key, []byte(fmt.Sprintf("%d", seq+1))); err != nil {
		return 0, err
	}
	return seq, nil
}

// invertedStamp encodes a time so lexicographic ascending order is
// newest-first.
func invertedStamp(t time.Time) string {
	return fmt.Sprintf("%020d", math.MaxInt64-t.UnixMilli())
}
