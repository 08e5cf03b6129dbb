package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"tweetsweep/internal/domain"
	"tweetsweep/internal/ports"
)

var (
	ErrFetchInProgress   = errors.New("a timeline fetch is already in progress")
	ErrBatchActive       = errors.New("a deletion batch is already active")
	ErrNoPendingBatch    = errors.New("no deletion batch is awaiting confirmation")
	ErrBatchNotConfirmed = errors.New("deletion batch has not been confirmed")
	ErrNothingSelected   = errors.New("no posts are selected")
	ErrUnknownPost       = errors.New("post is not in the vault")
)

// ExtractFunc turns a raw list query response into owned post records.
type ExtractFunc func(doc []byte, ownerUserID string) []domain.Post

type batchState string

const (
	stateIdle                 batchState = "idle"
	stateAwaitingConfirmation batchState = "awaiting_confirmation"
	stateProcessing           batchState = "processing"
)

// Outcome reports one deletion attempt. Failures are data, not faults: a nil
// Err means the post was removed remotely and dropped from the vault.
type Outcome struct {
	ID  domain.PostID
	Err error
}

// Batch is an immutable snapshot of the selection taken when batch processing
// begins. Mutations to the live selection after the snapshot do not affect an
// in-flight batch. Confirm is the authorization gate: Run refuses batches that
// have not been confirmed.
type Batch struct {
	ids       []domain.PostID
	confirmed bool
}

func (b *Batch) IDs() []domain.PostID {
	out := make([]domain.PostID, len(b.ids))
	copy(out, b.ids)
	return out
}

func (b *Batch) Size() int {
	return len(b.ids)
}

func (b *Batch) Confirm() {
	b.confirmed = true
}

// Counts is the vault/selection/deleted summary shown next to rendered posts.
type Counts struct {
	Found    int
	Selected int
	Deleted  int
}

// Sweeper holds the session's in-memory state: the vault of discovered posts,
// the user's selection, and the set of confirmed remote deletions. All three
// live for a single invocation and are cleared together by Reset.
//
// Invariants maintained by the public operations:
//   - the selection is always a subset of the vault keys
//   - the deleted set and the vault are disjoint
type Sweeper struct {
	gateway   ports.PlatformGateway
	extract   ExtractFunc
	pacer     *Pacer
	logger    *log.Logger
	creds     domain.Credentials
	pageCount int

	mu        sync.Mutex
	vault     map[domain.PostID]domain.Post
	selection map[domain.PostID]struct{}
	deleted   map[domain.PostID]struct{}
	fetching  bool
	state     batchState
}

func NewSweeper(gateway ports.PlatformGateway, extract ExtractFunc, pacer *Pacer, logger *log.Logger, creds domain.Credentials, pageCount int) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}

	return &Sweeper{
		gateway:   gateway,
		extract:   extract,
		pacer:     pacer,
		logger:    logger,
		creds:     creds,
		pageCount: pageCount,
		vault:     map[domain.PostID]domain.Post{},
		selection: map[domain.PostID]struct{}{},
		deleted:   map[domain.PostID]struct{}{},
		state:     stateIdle,
	}
}

func (s *Sweeper) Credentials() domain.Credentials {
	return s.creds
}

// FetchPage retrieves one page of the user's timeline and merges the extracted
// posts into the vault. A reentrancy guard rejects overlapping fetches; the
// guard is released whether the fetch succeeds or fails.
func (s *Sweeper) FetchPage(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return 0, ErrFetchInProgress
	}
	s.fetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetching = false
		s.mu.Unlock()
	}()

	doc, err := s.gateway.UserTimeline(ctx, s.creds.UserID, s.pageCount)
	if err != nil {
		return 0, fmt.Errorf("fetch timeline page: %w", err)
	}

	posts := s.extract(doc, s.creds.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, post := range posts {
		if _, ok := s.vault[post.ID]; !ok {
			added++
		}
		s.vault[post.ID] = post
	}

	return added, nil
}

// Posts returns the vault contents newest-first.
func (s *Sweeper) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Post, 0, len(s.vault))
	for _, post := range s.vault {
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtMillis != out[j].CreatedAtMillis {
			return out[i].CreatedAtMillis > out[j].CreatedAtMillis
		}
		return out[i].ID > out[j].ID
	})

	return out
}

// Select marks vault posts for deletion. Unknown ids are rejected so the
// selection can never reference a post outside the vault.
func (s *Sweeper) Select(ids ...domain.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.vault[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPost, id)
		}
	}
	for _, id := range ids {
		s.selection[id] = struct{}{}
	}

	return nil
}

func (s *Sweeper) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.vault {
		s.selection[id] = struct{}{}
	}
}

func (s *Sweeper) Deselect(ids ...domain.PostID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.selection, id)
	}
}

func (s *Sweeper) IsSelected(id domain.PostID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.selection[id]
	return ok
}

func (s *Sweeper) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Counts{
		Found:    len(s.vault),
		Selected: len(s.selection),
		Deleted:  len(s.deleted),
	}
}

// Reset clears the vault, selection and deleted set together. A deletion batch
// already in flight is not aborted: its snapshot keeps processing and batch
// cancellation is the caller's context's job.
func (s *Sweeper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vault = map[domain.PostID]domain.Post{}
	s.selection = map[domain.PostID]struct{}{}
	s.deleted = map[domain.PostID]struct{}{}
}

// BeginBatch snapshots the current selection newest-first and moves the
// processor from Idle to AwaitingConfirmation.
func (s *Sweeper) BeginBatch() (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return nil, ErrBatchActive
	}
	if len(s.selection) == 0 {
		return nil, ErrNothingSelected
	}

	ids := make([]domain.PostID, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.vault[ids[i]], s.vault[ids[j]]
		if a.CreatedAtMillis != b.CreatedAtMillis {
			return a.CreatedAtMillis > b.CreatedAtMillis
		}
		return ids[i] > ids[j]
	})

	s.state = stateAwaitingConfirmation
	return &Batch{ids: ids}, nil
}

// AbandonBatch returns the processor to Idle without any network effect, for
// when the user declines the confirmation prompt.
func (s *Sweeper) AbandonBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateAwaitingConfirmation {
		s.state = stateIdle
	}
}

// Run processes a confirmed batch strictly sequentially. Each successful
// deletion removes the id from the vault and selection and adds it to the
// deleted set as one transition, then emits an Outcome. Failures are logged,
// emitted as data and skipped; there is no retry. The pacer enforces the
// minimum gap before every request after the first. The context is checked
// between iterations, which is the only way to abort a running batch.
func (s *Sweeper) Run(ctx context.Context, batch *Batch, onOutcome func(Outcome)) error {
	s.mu.Lock()
	if s.state != stateAwaitingConfirmation {
		s.mu.Unlock()
		return ErrNoPendingBatch
	}
	if !batch.confirmed {
		s.mu.Unlock()
		return ErrBatchNotConfirmed
	}
	s.state = stateProcessing
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = stateIdle
		s.mu.Unlock()
	}()

	for _, id := range batch.ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}

		if err := s.gateway.DeletePost(ctx, id); err != nil {
			s.logger.Warn("delete failed", "post", id, "err", err)
			if onOutcome != nil {
				onOutcome(Outcome{ID: id, Err: err})
			}
			continue
		}

		s.mu.Lock()
		delete(s.vault, id)
		delete(s.selection, id)
		s.deleted[id] = struct{}{}
		s.mu.Unlock()

		if onOutcome != nil {
			onOutcome(Outcome{ID: id})
		}
	}

	return nil
}
