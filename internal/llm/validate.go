package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled schemas by name. Names are assumed to identify one definition.
var schemas = struct {
	mu sync.Mutex
	m  map[string]*jsonschema.Schema
}{m: make(map[string]*jsonschema.Schema)}

func compileSchema(s *Schema) (*jsonschema.Schema, error) {
	schemas.mu.Lock()
	defer schemas.mu.Unlock()
	if c, ok := schemas.m[s.Name]; ok {
		return c, nil
	}

	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	schemas.m[s.Name] = compiled
	return compiled, nil
}

// checkSchema reports a KindInvalid *Error unless content is a JSON
// document valid against s. A nil s accepts anything.
func checkSchema(s *Schema, content json.RawMessage) error {
	if s == nil {
		return nil
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return invalid(content, "empty reply")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return invalid(content, "reply is not JSON: %w", err)
	}
	compiled, err := compileSchema(s)
	if err != nil {
		return fmt.Errorf("llm: compile schema %q: %w", s.Name, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(content, "reply does not match %s: %w", s.Name, err)
	}
	return nil
}

// finish validates a vendor reply and builds the Response. A structured
// reply that hit the token limit is KindTruncated.
func finish(req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &Error{Kind: KindTruncated, Content: content}
		}
		if err := checkSchema(req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, Stop: stop}, nil
}

// resolveModel maps a short alias to the vendor's model id. Unknown names
// pass through so full ids can be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
