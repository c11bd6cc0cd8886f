package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/google/uuid"
)

// Websocket event types pushed to thread subscribers.
const (
	EventThreadUpdated  = "thread.updated"
	EventReplyPending   = "reply.pending"
	EventReplyConfirmed = "reply.confirmed"
	EventReplyFailed    = "reply.failed"
)

const tempReplyPrefix = "temp-"

// Broadcaster delivers an event to every client watching a thread.
type Broadcaster interface {
	BroadcastToThread(threadID string, event dto.WSEvent)
}

type ForumService struct {
	backend     Backend
	broadcaster Broadcaster
	interval    time.Duration

	mu   sync.Mutex
	live map[string]*liveThread
}

// liveThread is the polling state for one watched thread.
type liveThread struct {
	subscribers int
	token       string
	cancel      context.CancelFunc
	snapshot    *dto.Thread
	digest      string
	pending     []dto.Reply
}

func NewForumService(backend Backend, broadcaster Broadcaster, interval time.Duration) *ForumService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ForumService{
		backend:     backend,
		broadcaster: broadcaster,
		interval:    interval,
		live:        make(map[string]*liveThread),
	}
}

func (s *ForumService) ListThreads(ctx context.Context, token string, filter dto.ThreadFilter) ([]dto.Thread, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Private != nil {
		q.Set("is_private", strconv.FormatBool(*filter.Private))
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	threads := []dto.Thread{}
	if err := s.backend.Get(ctx, "/forum/threads", q, token, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (s *ForumService) GetThread(ctx context.Context, token, threadID string) (*dto.Thread, error) {
	var thread dto.Thread
	if err := s.backend.Get(ctx, pathf("/forum/threads/%s", threadID), nil, token, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateThread rejects an empty title or content before anything is sent upstream.
func (s *ForumService) CreateThread(ctx context.Context, token string, req dto.CreateThreadRequest) (*dto.Thread, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)

	v := &ValidationError{}
	if req.Title == "" {
		v.add("title", "Judul tidak boleh kosong")
	}
	if req.Content == "" {
		v.add("content", "Isi diskusi tidak boleh kosong")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var thread dto.Thread
	if err := s.backend.Post(ctx, "/forum/threads", token, req, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

func (s *ForumService) UpdateThread(ctx context.Context, token, threadID string, req dto.UpdateThreadRequest) (*dto.Thread, error) {
	v := &ValidationError{}
	if req.Title != nil {
		*req.Title = strings.TrimSpace(*req.Title)
		if *req.Title == "" {
			v.add("title", "Judul tidak boleh kosong")
		}
	}
	if req.Content != nil {
		*req.Content = strings.TrimSpace(*req.Content)
		if *req.Content == "" {
			v.add("content", "Isi diskusi tidak boleh kosong")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var thread dto.Thread
	if err := s.backend.Put(ctx, pathf("/forum/threads/%s", threadID), token, req, &thread); err != nil {
		return nil, err
	}
	s.publish(threadID, &thread)
	return &thread, nil
}

func (s *ForumService) DeleteThread(ctx context.Context, token, threadID string) error {
	return s.backend.Delete(ctx, pathf("/forum/threads/%s", threadID), token)
}

// Moderation flags. The backend answers with the updated thread.
func (s *ForumService) SetPinned(ctx context.Context, token, threadID string, value bool) (*dto.Thread, error) {
	return s.moderate(ctx, token, threadID, "pin", value)
}

func (s *ForumService) SetLocked(ctx context.Context, token, threadID string, value bool) (*dto.Thread, error) {
	return s.moderate(ctx, token, threadID, "lock", value)
}

func (s *ForumService) SetPrivate(ctx context.Context, token, threadID string, value bool) (*dto.Thread, error) {
	return s.moderate(ctx, token, threadID, "private", value)
}

func (s *ForumService) moderate(ctx context.Context, token, threadID, action string, value bool) (*dto.Thread, error) {
	var thread dto.Thread
	path := pathf("/forum/threads/%s/", threadID) + action
	if err := s.backend.Patch(ctx, path, token, dto.ModerationRequest{Value: value}, &thread); err != nil {
		return nil, err
	}
	s.publish(threadID, &thread)
	return &thread, nil
}

// AddReply shows the reply to watchers as pending before the backend confirms it. On success
// the pending reply is swapped for the stored one; on failure it is withdrawn.
func (s *ForumService) AddReply(ctx context.Context, token, threadID, content string, author dto.Author) (*dto.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "Balasan tidak boleh kosong")
	}

	temp := dto.Reply{
		ID:        dto.ID(tempReplyPrefix + uuid.NewString()),
		Content:   content,
		Author:    author,
		Role:      author.Role,
		CreatedAt: time.Now(),
		Pending:   true,
	}
	s.trackPending(threadID, temp)
	s.broadcast(threadID, EventReplyPending, dto.WSReplyEvent{ThreadID: dto.ID(threadID), Reply: temp})

	var created dto.Reply
	err := s.backend.Post(ctx, pathf("/forum/threads/%s/replies", threadID), token, dto.CreateReplyRequest{Content: content}, &created)
	if err != nil {
		s.settlePending(threadID, temp.ID, nil)
		s.broadcast(threadID, EventReplyFailed, dto.WSReplyEvent{ThreadID: dto.ID(threadID), Reply: temp})
		return nil, err
	}

	s.settlePending(threadID, temp.ID, &created)
	s.broadcast(threadID, EventReplyConfirmed, dto.WSReplyEvent{ThreadID: dto.ID(threadID), Reply: created, TempID: temp.ID})
	return &created, nil
}

// DeleteReply issues a single delete and then re-reads the thread so every viewer converges
// on the backend's state.
func (s *ForumService) DeleteReply(ctx context.Context, token, threadID, replyID string) (*dto.Thread, error) {
	if err := s.backend.Delete(ctx, pathf("/forum/threads/%s/replies/%s", threadID, replyID), token); err != nil {
		return nil, err
	}
	thread, err := s.GetThread(ctx, token, threadID)
	if err != nil {
		return nil, err
	}
	s.publish(threadID, thread)
	return thread, nil
}

// Watch registers a subscriber. The first subscriber starts the poller; token is used for
// the poll requests and is replaced by each newer subscriber's token.
func (s *ForumService) Watch(threadID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lt, ok := s.live[threadID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		lt = &liveThread{cancel: cancel}
		s.live[threadID] = lt
		go s.poll(ctx, threadID, lt)
		log.Printf("[Forum] Live refresh started for thread %s", threadID)
	}
	lt.subscribers++
	lt.token = token
}

// Unwatch drops a subscriber and stops the poller once nobody is left.
func (s *ForumService) Unwatch(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lt, ok := s.live[threadID]
	if !ok {
		return
	}
	lt.subscribers--
	if lt.subscribers <= 0 {
		lt.cancel()
		delete(s.live, threadID)
		log.Printf("[Forum] Live refresh stopped for thread %s", threadID)
	}
}

// Watching reports whether a poller is running for the thread.
func (s *ForumService) Watching(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[threadID]
	return ok
}

// Snapshot returns a copy of the last state pushed to watchers of the thread.
func (s *ForumService) Snapshot(threadID string) (*dto.Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lt, ok := s.live[threadID]
	if !ok || lt.snapshot == nil {
		return nil, false
	}
	cp := *lt.snapshot
	cp.Replies = append([]dto.Reply(nil), lt.snapshot.Replies...)
	return &cp, true
}

func (s *ForumService) poll(ctx context.Context, threadID string, lt *liveThread) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refresh(ctx, threadID, lt)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx, threadID, lt)
		}
	}
}

func (s *ForumService) refresh(ctx context.Context, threadID string, lt *liveThread) {
	s.mu.Lock()
	token := lt.token
	s.mu.Unlock()

	var thread dto.Thread
	if err := s.backend.Get(ctx, pathf("/forum/threads/%s", threadID), nil, token, &thread); err != nil {
		if ctx.Err() == nil {
			log.Printf("[Forum] Poll thread %s failed: %v", threadID, err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	s.publish(threadID, &thread)
}

// publish stores the fresh thread as the live snapshot, keeping replies that are still
// pending, and pushes it when it differs from what watchers last saw.
func (s *ForumService) publish(threadID string, thread *dto.Thread) {
	s.mu.Lock()
	lt, ok := s.live[threadID]
	if !ok {
		s.mu.Unlock()
		return
	}
	merged := *thread
	merged.Replies = append(append([]dto.Reply(nil), thread.Replies...), lt.pending...)
	digest := digestOf(&merged)
	if digest == lt.digest {
		s.mu.Unlock()
		return
	}
	lt.snapshot = &merged
	lt.digest = digest
	s.mu.Unlock()

	s.broadcast(threadID, EventThreadUpdated, dto.WSThreadUpdated{ThreadID: dto.ID(threadID), Thread: merged})
}

func (s *ForumService) trackPending(threadID string, reply dto.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lt, ok := s.live[threadID]
	if !ok {
		return
	}
	lt.pending = append(lt.pending, reply)
	if lt.snapshot != nil {
		lt.snapshot.Replies = append(lt.snapshot.Replies, reply)
		lt.digest = digestOf(lt.snapshot)
	}
}

// settlePending removes the temp reply and, when the backend stored it, appends the
// confirmed reply in its place.
func (s *ForumService) settlePending(threadID string, tempID dto.ID, confirmed *dto.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lt, ok := s.live[threadID]
	if !ok {
		return
	}
	lt.pending = withoutReply(lt.pending, tempID)
	if lt.snapshot == nil {
		return
	}
	lt.snapshot.Replies = withoutReply(lt.snapshot.Replies, tempID)
	if confirmed != nil && !hasReply(lt.snapshot.Replies, confirmed.ID) {
		lt.snapshot.Replies = append(lt.snapshot.Replies, *confirmed)
	}
	lt.digest = digestOf(lt.snapshot)
}

func (s *ForumService) broadcast(threadID, eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToThread(threadID, dto.WSEvent{Type: eventType, Payload: payload})
}

func withoutReply(replies []dto.Reply, id dto.ID) []dto.Reply {
	out := replies[:0:0]
	for _, r := range replies {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func hasReply(replies []dto.Reply, id dto.ID) bool {
	for _, r := range replies {
		if r.ID == id {
			return true
		}
	}
	return false
}

func digestOf(thread *dto.Thread) string {
	b, err := json.Marshal(thread)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
