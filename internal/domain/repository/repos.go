package repository

// Repos agrupa los repositorios atados a una misma transacción. Lo entregan los TxRunner
// de infraestructura al callback de cada caso de uso.
type Repos struct {
	Documents DocumentRepository
	Sequences SequenceRepository
	Products  ProductRepository
	Customers CustomerRepository
	Movements StockMovementRepository
	Shifts    ShiftRepository
	Audit     AuditLogRepository
}
