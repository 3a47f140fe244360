package graph

// Mutation event names. Every mutating operation that changes visible state
// emits exactly one of these, after its store write(s) succeed.
const (
	EventNodeCreated    = "node_created"
	EventNodeUpdated    = "node_updated"
	EventNodeDeleted    = "node_deleted"
	EventContextAdded   = "context_added"
	EventEdgeCreated    = "edge_created"
	EventEdgeDeleted    = "edge_deleted"
	EventBoardCreated   = "board_created"
	EventBoardUpdated   = "board_updated"
	EventBoardDeleted   = "board_deleted"
	EventProjectCreated = "project_created"
	EventProjectDeleted = "project_deleted"
)

// Event is one completed mutation, scoped to a board.
type Event struct {
	Event   string `json:"event"`
	Data    any    `json:"data"`
	BoardID string `json:"boardId"`
}

// Subscriber receives events synchronously after each successful write.
type Subscriber func(Event)

// Deleted is the payload used for delete events, carrying only the id.
type Deleted struct {
	ID string `json:"id"`
}
