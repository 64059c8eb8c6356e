package domain

// Outcome — результат успешно обработанной мутации.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeAppended
	OutcomeUpdated
	OutcomeRemoved
	// OutcomeNoOp — запрос корректен, но ничего не изменил.
	OutcomeNoOp
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAppended:
		return "appended"
	case OutcomeUpdated:
		return "updated"
	case OutcomeRemoved:
		return "removed"
	case OutcomeNoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// UpdateResult повторяет счётчики update-операций документного хранилища.
type UpdateResult struct {
	Matched  int64
	Modified int64
}
