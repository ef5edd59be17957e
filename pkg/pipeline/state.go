package pipeline

// State is the driver's position in a run:
// disconnected -> connected -> staging_loaded -> dimensions_loaded -> disconnected.
// A failed statement leaves the state where the last completed phase put it.
type State string

const (
	StateDisconnected     State = "disconnected"
	StateConnected        State = "connected"
	StateStagingLoaded    State = "staging_loaded"
	StateDimensionsLoaded State = "dimensions_loaded"
)

// Phase names a statement sequence executed by the driver.
type Phase string

const (
	PhaseLoadStaging Phase = "load_staging_tables"
	PhaseInsert      Phase = "insert_tables"
	PhaseDrop        Phase = "drop_tables"
	PhaseCreate      Phase = "create_tables"
)
