package notes

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/flemzord/notekeeper/internal/tool"
)

func newTestRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	svc, _ := newTestService(t, Options{})
	reg := tool.NewRegistry()
	if err := RegisterTools(reg, svc); err != nil {
		t.Fatalf("RegisterTools: %v", err)
	}
	return reg
}

func TestRegisterTools_Names(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	want := "add_note_to_file,create_new_file,get_resolved_path,read_notes"
	if got := strings.Join(reg.Names(), ","); got != want {
		t.Errorf("Names() = %s, want %s", got, want)
	}
	for _, tl := range Tools(nil) {
		if !json.Valid(tl.Schema()) {
			t.Errorf("%s: schema is not valid JSON", tl.Name())
		}
	}
}

func TestTools_EndToEnd(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	ctx := context.Background()

	steps := []struct {
		tool    string
		args    string
		want    string
		isError bool
	}{
		{tool: ToolCreateFile, args: `{"filename":"a.txt","content":"hello"}`, want: "created successfully"},
		{tool: ToolReadNotes, args: `{"filename":"a.txt"}`, want: "hello"},
		{tool: ToolAppendNote, args: `{"content":"x"}`, want: "Content appended to 'notes.txt'"},
		{tool: ToolReadNotes, args: `{}`, want: "x\n"},
		{tool: ToolReadNotes, args: `{"filename":"nope.txt"}`, want: "No file named 'nope.txt'"},
		{tool: ToolResolvedPath, args: ``, want: DefaultPathFile},
		{tool: ToolCreateFile, args: `{"filename":"b.txt","content":"x","directory":"/etc"}`, want: "Error creating file: ", isError: true},
		{tool: ToolCreateFile, args: `{"filename":"b.txt"}`, want: `missing required argument "content"`, isError: true},
		{tool: ToolAppendNote, args: `{"filename":"b.txt"}`, want: `missing required argument "content"`, isError: true},
		{tool: ToolReadNotes, args: `{"filename":42}`, want: "invalid arguments", isError: true},
	}
	for _, s := range steps {
		out, err := reg.Execute(ctx, s.tool, json.RawMessage(s.args))
		if err != nil {
			t.Fatalf("%s(%s): %v", s.tool, s.args, err)
		}
		if !strings.Contains(out.Content, s.want) {
			t.Errorf("%s(%s) = %q, want it to contain %q", s.tool, s.args, out.Content, s.want)
		}
		if out.IsError != s.isError {
			t.Errorf("%s(%s) IsError = %v, want %v", s.tool, s.args, out.IsError, s.isError)
		}
	}
}

func TestTools_Scopes(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	reg.SetPolicy(tool.Policy{ReadOnly: true})

	var names []string
	for _, tl := range reg.Enabled() {
		names = append(names, tl.Name())
	}
	if got := strings.Join(names, ","); got != "get_resolved_path,read_notes" {
		t.Errorf("enabled under read_only = %s", got)
	}
}
