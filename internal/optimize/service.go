// Package optimize orchestrates AI schedule optimization: it gathers the
// day's tasks and blocks, asks the model for a placement, validates the
// proposal against the conflict rules, and persists it once accepted.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rumos-automatic/tasktimeflow/internal/conflict"
	"github.com/rumos-automatic/tasktimeflow/internal/llm"
	"github.com/rumos-automatic/tasktimeflow/internal/scheduler"
	"github.com/rumos-automatic/tasktimeflow/internal/task"
)

// Proposal errors.
var (
	ErrNoOpenTasks     = errors.New("no open tasks to optimize")
	ErrUnknownTask     = errors.New("proposal references an unknown task")
	ErrInvalidProposal = errors.New("proposal violates scheduling constraints")
	ErrStaleResult     = errors.New("optimization result superseded or unknown")
)

// Placement pairs a validated slot with the model's scores for it.
type Placement struct {
	Slot            *task.TimelineSlot
	Confidence      float64
	EnergyAlignment float64
	ContextScore    float64
}

// Proposal is a validated optimization result awaiting user acceptance.
type Proposal struct {
	Token        string
	Placements   []Placement
	Improvements []string
	Metrics      llm.Metrics
	Reasoning    string
}

// Service runs optimization requests against the repository and LLM.
type Service struct {
	repo      task.Repository
	optimizer *llm.Optimizer
	slots     *scheduler.Service

	mu          sync.Mutex
	activeToken string
	proposal    *Proposal
	proposalErr error
	waiters     map[string]chan struct{}
}

// NewService creates an optimization service.
func NewService(repo task.Repository, optimizer *llm.Optimizer, slots *scheduler.Service) *Service {
	return &Service{
		repo:      repo,
		optimizer: optimizer,
		slots:     slots,
		waiters:   make(map[string]chan struct{}),
	}
}

// Propose runs one synchronous optimization round for a user's open tasks on
// the given date. The model's proposal is validated in full: an unknown task,
// a malformed range, or any overlap rejects the whole proposal rather than
// salvaging parts of it.
func (s *Service) Propose(ctx context.Context, userID string, date time.Time, constraints scheduler.Constraints) (*Proposal, error) {
	tasks, err := s.openTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNoOpenTasks
	}

	blocks, err := s.repo.ListTimeBlocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing time blocks: %w", err)
	}

	existing, err := s.repo.ListSlotsByDate(ctx, date, userID, task.SlotFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing existing slots: %w", err)
	}

	resp, err := s.optimizer.Optimize(ctx, llm.OptimizationRequest{
		Date:        date,
		Tasks:       tasks,
		Blocks:      blocks,
		Constraints: constraints,
	})
	if err != nil {
		return nil, err
	}

	placements, err := s.validate(resp.OptimizedSchedule, tasks, existing, userID)
	if err != nil {
		return nil, err
	}

	return &Proposal{
		Token:        uuid.NewString(),
		Placements:   placements,
		Improvements: resp.Improvements,
		Metrics:      resp.Metrics,
		Reasoning:    resp.Reasoning,
	}, nil
}

// Apply persists an accepted proposal through the slot service, which
// re-checks conflicts slot by slot. Persistence is not transactional: a
// failure partway leaves the slots created so far in place.
func (s *Service) Apply(ctx context.Context, p *Proposal) ([]*task.TimelineSlot, error) {
	created := make([]*task.TimelineSlot, 0, len(p.Placements))
	for _, pl := range p.Placements {
		sl, err := s.slots.CreateSlot(ctx, pl.Slot.UserID, pl.Slot.TaskID, pl.Slot.Start, pl.Slot.End)
		if err != nil {
			return created, fmt.Errorf("applying placement for task %d: %w", pl.Slot.TaskID, err)
		}
		created = append(created, sl)
	}
	return created, nil
}

// Begin starts an optimization round in the background and returns its
// correlation token. Starting a new round supersedes the previous one: a
// late result arriving for an old token is dropped, not surfaced.
func (s *Service) Begin(ctx context.Context, userID string, date time.Time, constraints scheduler.Constraints) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.activeToken = token
	s.proposal = nil
	s.proposalErr = nil
	s.waiters[token] = make(chan struct{})
	s.mu.Unlock()

	go func() {
		p, err := s.Propose(ctx, userID, date, constraints)
		if p != nil {
			p.Token = token
		}
		s.finish(token, p, err)
	}()

	return token
}

// Wait blocks until the round identified by token has finished.
func (s *Service) Wait(token string) {
	s.mu.Lock()
	ch, ok := s.waiters[token]
	s.mu.Unlock()
	if ok {
		<-ch
	}
}

// Result returns the outcome of a background round. A token that was
// superseded before completing reports ErrStaleResult.
func (s *Service) Result(token string) (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.activeToken || (s.proposal == nil && s.proposalErr == nil) {
		return nil, ErrStaleResult
	}
	return s.proposal, s.proposalErr
}

// finish records a round's outcome unless it has been superseded.
func (s *Service) finish(token string, p *Proposal, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.waiters[token]; ok {
		close(ch)
		delete(s.waiters, token)
	}

	if token != s.activeToken {
		return
	}
	s.proposal = p
	s.proposalErr = err
}

func (s *Service) openTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	all, err := s.repo.ListTasks(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	open := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	return open, nil
}

// validate turns the model's raw placements into slots, rejecting the whole
// proposal on the first bad one. Each placement is checked against the
// existing slots and against the placements accepted before it.
func (s *Service) validate(proposed []llm.OptimizedSlot, tasks []*task.Task, existing []*task.TimelineSlot, userID string) ([]Placement, error) {
	byID := make(map[int64]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	accepted := make([]*task.TimelineSlot, 0, len(proposed)+len(existing))
	accepted = append(accepted, existing...)

	placements := make([]Placement, 0, len(proposed))
	for _, op := range proposed {
		if _, ok := byID[op.TaskID]; !ok {
			return nil, fmt.Errorf("%w: task %d", ErrUnknownTask, op.TaskID)
		}

		start, err := time.Parse(time.RFC3339, op.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d start %q: %v", ErrInvalidProposal, op.TaskID, op.StartTime, err)
		}
		end, err := time.Parse(time.RFC3339, op.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d end %q: %v", ErrInvalidProposal, op.TaskID, op.EndTime, err)
		}

		sl, err := task.NewSlot(userID, op.TaskID, start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrInvalidProposal, op.TaskID, err)
		}

		if conflicts := conflict.Detect(accepted, start, end); conflict.HasBlocking(conflicts) {
			return nil, fmt.Errorf("%w: task %d overlaps another slot", ErrInvalidProposal, op.TaskID)
		}

		accepted = append(accepted, sl)
		placements = append(placements, Placement{
			Slot:            sl,
			Confidence:      op.Confidence,
			EnergyAlignment: op.EnergyAlignment,
			ContextScore:    op.ContextScore,
		})
	}

	return placements, nil
}
