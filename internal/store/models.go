package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultProjectID is the distinguished project that always exists and
// cannot be deleted.
const DefaultProjectID = "default"

// DefaultBoardID is the distinguished board that always exists, cannot be
// deleted, and is the landing target when no board is specified.
const DefaultBoardID = "default"

// Node types form a closed enumeration. The store never interprets a node's
// content payload; the type only scopes what callers put in it.
const (
	NodeConversation = "conversation"
	NodeDiagram      = "diagram"
	NodeDiagramBox   = "diagramBox"
	NodeContainer    = "container"
	NodeTerminal     = "terminal"
	NodeRichText     = "richtext"
	NodeStickyNote   = "stickyNote"
	NodeList         = "list"
)

// NodeTypes lists the valid node types, for error messages and docs.
var NodeTypes = []string{
	NodeConversation, NodeDiagram, NodeDiagramBox, NodeContainer,
	NodeTerminal, NodeRichText, NodeStickyNote, NodeList,
}

// ValidNodeType reports whether t is a recognized node type.
func ValidNodeType(t string) bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Context sources tag where a context fragment came from.
const (
	SourceUser     = "user"
	SourceAgent    = "agent"
	SourceCodebase = "codebase"
	SourceDiagram  = "diagram"
)

// Project groups boards under a stable string key.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Viewport is a board's persisted camera position.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Board is a named canvas scoped to a project, unique by (project_id, slug).
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ProjectID string    `json:"projectId"`
	Viewport  *Viewport `json:"viewport,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Node is the atomic canvas entity. Content is an opaque serialized payload
// owned entirely by callers; Context is the rolled-up free-text string used
// for inheritance and prompting.
type Node struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content,omitempty"`
	Context   string          `json:"context,omitempty"`
	ParentID  *string         `json:"parentId,omitempty"`
	BoardID   string          `json:"boardId"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NodeSpec describes a node to create. ID is optional; one is generated
// when empty.
type NodeSpec struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type" validate:"required,oneof=conversation diagram diagramBox container terminal richtext stickyNote list"`
	Content  json.RawMessage `json:"content,omitempty"`
	Context  string          `json:"context,omitempty"`
	ParentID *string         `json:"parentId,omitempty"`
	BoardID  string          `json:"boardId,omitempty"`
}

// NodeUpdate carries partial field updates. Nil pointers mean "leave as is";
// a ParentID pointing at the empty string detaches the node from its parent.
type NodeUpdate struct {
	Content  json.RawMessage
	Context  *string
	Type     *string
	ParentID *string
}

// Empty reports whether the update carries no fields.
func (u NodeUpdate) Empty() bool {
	return u.Content == nil && u.Context == nil && u.Type == nil && u.ParentID == nil
}

// Edge is a labeled directed connection between two nodes.
type Edge struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContextEntry is an immutable append-only context fragment attached to a
// node. Distinct from Node.Context: entries are the audit trail, the node
// field is the current rolled-up string.
type ContextEntry struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Setting is one key/value pair; last write wins.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats reports aggregate counts across the graph.
type Stats struct {
	Nodes          int            `json:"nodes"`
	NodesByType    map[string]int `json:"nodesByType"`
	Edges          int            `json:"edges"`
	Boards         int            `json:"boards"`
	Projects       int            `json:"projects"`
	ContextEntries int            `json:"contextEntries"`
}

// GraphExport is a point-in-time snapshot of one board.
type GraphExport struct {
	BoardID string `json:"boardId"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

var validate = validator.New()

// ValidateStruct runs validator tags on any spec struct and flattens the
// field errors into one message.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", e.Field(), e.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// ValidSource reports whether s is a recognized context source tag.
func ValidSource(s string) bool {
	switch s {
	case SourceUser, SourceAgent, SourceCodebase, SourceDiagram:
		return true
	}
	return false
}
