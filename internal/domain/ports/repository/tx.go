package repository

// Tx is an opaque transaction/executor handle threaded through repository
// calls. Concrete types are infra-defined (pgx.Tx for Postgres); nil means
// the non-transactional path. Directory mutations touch single records, so no
// transaction manager is carried; uniqueness is enforced by the store.
type Tx interface{}

// NoTX is passed where a repository call should run straight on the pool.
var NoTX Tx
