package memory

import (
	"sort"
	"sync"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/evaluation"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
	"accelerator/internal/domain/user"
)

// Store keeps every entity behind one mutex so cross-entity writes (counter
// increments, cascades) stay atomic. It backs local runs without DATABASE_URL
// and the service tests.
type Store struct {
	mu  sync.Mutex
	seq int

	users         *table[user.User]
	directions    *table[direction.Direction]
	programs      *table[program.Program]
	joinPrograms  *table[program.JoinProgram]
	stages        *table[stage.Stage]
	orderedStages *table[stage.OrderedStage]
	applicants    *table[applicant.Applicant]
	responses     *table[applicant.Response]
	evaluations   *table[evaluation.Evaluation]
}

func NewStore() *Store {
	return &Store{
		users:         newTable[user.User](),
		directions:    newTable[direction.Direction](),
		programs:      newTable[program.Program](),
		joinPrograms:  newTable[program.JoinProgram](),
		stages:        newTable[stage.Stage](),
		orderedStages: newTable[stage.OrderedStage](),
		applicants:    newTable[applicant.Applicant](),
		responses:     newTable[applicant.Response](),
		evaluations:   newTable[evaluation.Evaluation](),
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Directions() *DirectionRepository       { return &DirectionRepository{s: s} }
func (s *Store) Programs() *ProgramRepository           { return &ProgramRepository{s: s} }
func (s *Store) JoinPrograms() *JoinProgramRepository   { return &JoinProgramRepository{s: s} }
func (s *Store) Stages() *StageRepository               { return &StageRepository{s: s} }
func (s *Store) OrderedStages() *OrderedStageRepository { return &OrderedStageRepository{s: s} }
func (s *Store) Applicants() *ApplicantRepository       { return &ApplicantRepository{s: s} }
func (s *Store) Responses() *ResponseRepository         { return &ResponseRepository{s: s} }
func (s *Store) Evaluations() *EvaluationRepository     { return &EvaluationRepository{s: s} }

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

// table keeps rows with their insertion sequence for stable ordering.
type table[T any] struct {
	rows map[common.UUID]T
	seq  map[common.UUID]int
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[common.UUID]T), seq: make(map[common.UUID]int)}
}

func (t *table[T]) insert(id common.UUID, seq int, v T) {
	t.rows[id] = v
	t.seq[id] = seq
}

func (t *table[T]) get(id common.UUID) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) set(id common.UUID, v T) {
	t.rows[id] = v
}

func (t *table[T]) remove(id common.UUID) {
	delete(t.rows, id)
	delete(t.seq, id)
}

// filter returns matching rows in insertion order, or newest first when desc.
func (t *table[T]) filter(keep func(T) bool, desc bool) []T {
	ids := make([]common.UUID, 0, len(t.rows))
	for id, v := range t.rows {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if desc {
			return t.seq[ids[i]] > t.seq[ids[j]]
		}
		return t.seq[ids[i]] < t.seq[ids[j]]
	})
	items := make([]T, 0, len(ids))
	for _, id := range ids {
		items = append(items, t.rows[id])
	}
	return items
}
