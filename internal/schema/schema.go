package schema

// Kind is the frame discriminant. The values are the wire values of the first frame byte.
type Kind uint8

const (
	KindAddOrder Kind = iota
	KindCancelOrder
	KindModifyOrder
	KindExecute
	KindTrade
	KindBBOUpdate
	_kind_end
)

// KindCount is the number of known kinds.
const KindCount = int(_kind_end)

func (k Kind) IsAvailable() bool {
	return k < _kind_end
}

func (k Kind) String() string {
	switch k {
	case KindAddOrder:
		return "AddOrder"
	case KindCancelOrder:
		return "CancelOrder"
	case KindModifyOrder:
		return "ModifyOrder"
	case KindExecute:
		return "Execute"
	case KindTrade:
		return "Trade"
	case KindBBOUpdate:
		return "BBOUpdate"
	default:
		return "Unknown"
	}
}

// Message is a pooled, fixed-size market event. Only the field set selected by Kind is
// meaningful; the others hold whatever a previous owner of the slot left behind.
type Message struct {
	Kind   Kind
	Add    AddOrder
	Cancel CancelOrder
	Modify ModifyOrder
	Exec   Execute
	Trade  Trade
	BBO    BBOUpdate
}

// Visitor handles every message kind.
type Visitor interface {
	OnAddOrder(AddOrder)
	OnCancelOrder(CancelOrder)
	OnModifyOrder(ModifyOrder)
	OnExecute(Execute)
	OnTrade(Trade)
	OnBBOUpdate(BBOUpdate)
}

// Visit dispatches the active field set to v. It reports false for an unknown kind.
func (m *Message) Visit(v Visitor) bool {
	switch m.Kind {
	case KindAddOrder:
		v.OnAddOrder(m.Add)
	case KindCancelOrder:
		v.OnCancelOrder(m.Cancel)
	case KindModifyOrder:
		v.OnModifyOrder(m.Modify)
	case KindExecute:
		v.OnExecute(m.Exec)
	case KindTrade:
		v.OnTrade(m.Trade)
	case KindBBOUpdate:
		v.OnBBOUpdate(m.BBO)
	default:
		return false
	}
	return true
}
