package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glimte/iac-go/contracts"
	"github.com/glimte/iac-go/schema"
	"github.com/glimte/iac-go/serialization"
	"github.com/spf13/cobra"
)

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return out, nil
}

// inputMessage accepts the message type as a name or a number
type inputMessage struct {
	ID       string          `json:"id"`
	Type     json.RawMessage `json:"type"`
	Protocol string          `json:"protocol"`
	Payload  json.RawMessage `json:"payload"`
}

func parseMessages(data []byte) ([]contracts.Message, error) {
	var inputs []inputMessage
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single inputMessage
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		inputs = []inputMessage{single}
	} else if err := json.Unmarshal(trimmed, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	messages := make([]contracts.Message, 0, len(inputs))
	for idx, in := range inputs {
		var typeName string
		if err := json.Unmarshal(in.Type, &typeName); err != nil {
			typeName = string(in.Type)
		}
		messageType, err := contracts.ParseMessageType(typeName)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", idx, err)
		}

		var payload interface{}
		if len(in.Payload) > 0 {
			if payload, err = decodeJSON(in.Payload); err != nil {
				return nil, fmt.Errorf("message %d: %w", idx, err)
			}
		}

		messages = append(messages, contracts.Message{
			ID:       in.ID,
			Type:     messageType,
			Protocol: in.Protocol,
			Payload:  payload,
		})
	}
	return messages, nil
}

type skippedOutput struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Error    string `json:"error"`
}

type incompleteOutput struct {
	AvailablePages []uint `json:"availablePages"`
	MissingPages   []uint `json:"missingPages"`
	TotalPages     uint   `json:"totalPages"`
}

type decodeOutput struct {
	Version    string              `json:"version"`
	Messages   []contracts.Message `json:"messages"`
	Skipped    []skippedOutput     `json:"skipped,omitempty"`
	Incomplete *incompleteOutput   `json:"incomplete,omitempty"`
}

func newDecodeOutput(result *serialization.Result) decodeOutput {
	out := decodeOutput{
		Version:  result.Version.String(),
		Messages: result.Messages,
	}
	if out.Messages == nil {
		out.Messages = []contracts.Message{}
	}
	for _, s := range result.Skipped {
		out.Skipped = append(out.Skipped, skippedOutput{
			Index:    s.Index,
			ID:       s.ID,
			Type:     s.Type.String(),
			Protocol: s.Protocol,
			Error:    s.Err.Error(),
		})
	}
	if result.Incomplete != nil {
		out.Incomplete = &incompleteOutput{
			AvailablePages: result.Incomplete.AvailablePages,
			MissingPages:   result.Incomplete.Missing(),
			TotalPages:     result.Incomplete.TotalPages,
		}
	}
	return out
}

type schemaOutput struct {
	Type       string               `json:"type"`
	Protocol   string               `json:"protocol"`
	Keys       []string             `json:"keys"`
	Candidates []*schema.Definition `json:"candidates"`
}

func newSchemaOutput(messageType contracts.MessageType, protocol string, entries []*schema.Entry) schemaOutput {
	out := schemaOutput{
		Type:     messageType.String(),
		Protocol: protocol,
		Keys:     schema.CandidateKeys(messageType, protocol),
	}
	for _, entry := range entries {
		out.Candidates = append(out.Candidates, schema.Describe(entry.Item))
	}
	return out
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
