package metadata

// Kind identifies the capability a resource node provides.
type Kind string

const (
	KindTable    Kind = "table"
	KindFunction Kind = "function"
)

// KnownKind returns true if the kind is part of the resource vocabulary.
func KnownKind(k Kind) bool {
	return k == KindTable || k == KindFunction
}

// Operation identifies one runtime operation a consumer may invoke on a
// producer's capability.
type Operation string

const (
	OpGet    Operation = "get"
	OpTryGet Operation = "try_get"
	OpList   Operation = "list"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// tableOps is the legal operation vocabulary of the table capability.
var tableOps = map[Operation]bool{
	OpGet:    true,
	OpTryGet: true,
	OpList:   true,
	OpInsert: true,
	OpUpdate: true,
	OpUpsert: true,
	OpDelete: true,
}

// OperationVocabulary returns the legal operations for a producer kind,
// or nil if the kind has no bindable capability.
func OperationVocabulary(k Kind) map[Operation]bool {
	if k == KindTable {
		return tableOps
	}
	return nil
}

// IsWrite returns true for operations that mutate table state.
func (op Operation) IsWrite() bool {
	switch op {
	case OpInsert, OpUpdate, OpUpsert, OpDelete:
		return true
	}
	return false
}
