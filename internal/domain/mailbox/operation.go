package mailbox

// GroupOperation изменение состава группы
type GroupOperation byte

const (
	OperationUnknown      GroupOperation = 0x00
	OperationAddMember    GroupOperation = 0x01
	OperationRemoveMember GroupOperation = 0x02
	OperationQuitGroup    GroupOperation = 0x03
)

// GroupOperationFromCode возвращает операцию по коду, OperationUnknown для остальных
func GroupOperationFromCode(code byte) GroupOperation {
	switch op := GroupOperation(code); op {
	case OperationAddMember, OperationRemoveMember, OperationQuitGroup:
		return op
	}
	return OperationUnknown
}

func (o GroupOperation) String() string {
	switch o {
	case OperationAddMember:
		return "addMember"
	case OperationRemoveMember:
		return "removeMember"
	case OperationQuitGroup:
		return "quitGroup"
	}
	return "unknown"
}
