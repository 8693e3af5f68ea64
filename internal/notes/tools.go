package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flemzord/notekeeper/internal/tool"
)

// Tool names as hosts invoke them.
const (
	ToolCreateFile   = "create_new_file"
	ToolAppendNote   = "add_note_to_file"
	ToolReadNotes    = "read_notes"
	ToolResolvedPath = "get_resolved_path"
)

const directoryDoc = `Optional. The path to the directory (e.g., 'Desktop', 'Documents/MyFiles', '~/my_folder'). Paths are resolved relative to your home directory (~). For security, paths must be within your home directory.`

// Tools returns the four file tools backed by svc.
func Tools(svc *Service) []tool.Tool {
	return []tool.Tool{
		&createFileTool{svc: svc},
		&appendNoteTool{svc: svc},
		&readNotesTool{svc: svc},
		&resolvedPathTool{svc: svc},
	}
}

// RegisterTools registers the file tools on registry.
func RegisterTools(registry *tool.Registry, svc *Service) error {
	for _, t := range Tools(svc) {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// output maps a Result onto a tool output. A missing file is informational.
func output(res Result) tool.Output {
	return tool.Output{
		Content: res.Text,
		IsError: res.Kind != KindNone && res.Kind != KindFileNotFound,
	}
}

func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

func invalidArgs(err error) tool.Output {
	return tool.Output{Content: fmt.Sprintf("invalid arguments: %v", err), IsError: true}
}

func missingArg(name string) tool.Output {
	return tool.Output{Content: fmt.Sprintf("invalid arguments: missing required argument %q", name), IsError: true}
}

// --- create_new_file ---

type createFileTool struct{ svc *Service }

func (t *createFileTool) Name() string         { return ToolCreateFile }
func (t *createFileTool) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }
func (t *createFileTool) Description() string {
	return "Creates a new file with the given name and content in the specified directory. " +
		"If the file already exists, it will be overwritten. " +
		"If no directory is specified, it defaults to a predefined storage location."
}

func (t *createFileTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {"type": "string", "description": "Name of the file to create (e.g., 'todo.txt')."},
			"content": {"type": "string", "description": "Initial content to write to the file."},
			"directory": {"type": "string", "description": "` + directoryDoc + `"}
		},
		"required": ["filename", "content"]
	}`)
}

type createFileArgs struct {
	Filename  *string `json:"filename"`
	Content   *string `json:"content"`
	Directory string  `json:"directory,omitempty"`
}

func (t *createFileTool) Execute(ctx context.Context, args json.RawMessage) (tool.Output, error) {
	var a createFileArgs
	if err := decode(args, &a); err != nil {
		return invalidArgs(err), nil
	}
	if a.Filename == nil {
		return missingArg("filename"), nil
	}
	if a.Content == nil {
		return missingArg("content"), nil
	}
	return output(t.svc.CreateFile(ctx, *a.Filename, *a.Content, a.Directory)), nil
}

// --- add_note_to_file ---

type appendNoteTool struct{ svc *Service }

func (t *appendNoteTool) Name() string         { return ToolAppendNote }
func (t *appendNoteTool) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadWrite} }
func (t *appendNoteTool) Description() string {
	return "Appends the given content to the specified file in the specified directory. " +
		"If no directory is specified, it defaults to a predefined storage location."
}

func (t *appendNoteTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string", "description": "The text content to append."},
			"filename": {"type": "string", "description": "The name of the file to write to (default is 'notes.txt').", "default": "notes.txt"},
			"directory": {"type": "string", "description": "` + directoryDoc + `"}
		},
		"required": ["content"]
	}`)
}

type appendNoteArgs struct {
	Content   *string `json:"content"`
	Filename  string  `json:"filename,omitempty"`
	Directory string  `json:"directory,omitempty"`
}

func (t *appendNoteTool) Execute(ctx context.Context, args json.RawMessage) (tool.Output, error) {
	var a appendNoteArgs
	if err := decode(args, &a); err != nil {
		return invalidArgs(err), nil
	}
	if a.Content == nil {
		return missingArg("content"), nil
	}
	return output(t.svc.AppendNote(ctx, *a.Content, a.Filename, a.Directory)), nil
}

// --- read_notes ---

type readNotesTool struct{ svc *Service }

func (t *readNotesTool) Name() string         { return ToolReadNotes }
func (t *readNotesTool) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadOnly} }
func (t *readNotesTool) Description() string {
	return "Reads and returns the contents of the specified file from the specified directory. " +
		"If no directory is specified, it defaults to a predefined storage location."
}

func (t *readNotesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {"type": "string", "description": "The name of the file to read (default is 'notes.txt').", "default": "notes.txt"},
			"directory": {"type": "string", "description": "` + directoryDoc + `"}
		}
	}`)
}

type fileArgs struct {
	Filename  string `json:"filename,omitempty"`
	Directory string `json:"directory,omitempty"`
}

func (t *readNotesTool) Execute(ctx context.Context, args json.RawMessage) (tool.Output, error) {
	var a fileArgs
	if err := decode(args, &a); err != nil {
		return invalidArgs(err), nil
	}
	return output(t.svc.ReadNotes(ctx, a.Filename, a.Directory)), nil
}

// --- get_resolved_path ---

type resolvedPathTool struct{ svc *Service }

func (t *resolvedPathTool) Name() string         { return ToolResolvedPath }
func (t *resolvedPathTool) Scopes() []tool.Scope { return []tool.Scope{tool.ScopeReadOnly} }
func (t *resolvedPathTool) Description() string {
	return "Returns the full absolute path where a file would be stored given the filename and optional directory. " +
		"Useful for confirming the target path before creating/modifying files."
}

func (t *resolvedPathTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {"type": "string", "description": "Name of the file (default is 'default_file.txt').", "default": "default_file.txt"},
			"directory": {"type": "string", "description": "` + directoryDoc + `"}
		}
	}`)
}

func (t *resolvedPathTool) Execute(ctx context.Context, args json.RawMessage) (tool.Output, error) {
	var a fileArgs
	if err := decode(args, &a); err != nil {
		return invalidArgs(err), nil
	}
	return output(t.svc.ResolvedPath(ctx, a.Filename, a.Directory)), nil
}
