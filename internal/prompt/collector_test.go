package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemafields/pkg/fields"
	"github.com/goliatone/go-schemafields/pkg/node"
	"github.com/goliatone/go-schemafields/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ InputConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) invalidMessages() []string {
	var out []string
	for _, msg := range s.infoMessages {
		if strings.HasPrefix(msg, "Invalid ") {
			out = append(out, msg)
		}
	}
	return out
}

const petSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 2},
		"age": {"type": "integer", "minimum": 0},
		"kind": {"type": "string", "enum": ["cat", "dog"]},
		"vaccinated": {"type": "boolean"},
		"colors": {"type": "array", "enum": ["red", "green", "blue"]},
		"secret": {"type": "string", "writeOnly": true},
		"nick": {"type": "string"},
		"devices": {
			"type": "array",
			"items": {
				"title": "Device",
				"type": "object",
				"properties": {"kind": {"type": "string"}},
				"required": ["kind"]
			}
		}
	},
	"required": ["name", "age"]
}`

func compilePets(t *testing.T) *node.Node {
	t.Helper()
	root, err := fields.Compile(testsupport.DecodeSchema(t, petSchema),
		fields.WithConfig(fields.Config{"nick": {Readonly: true}}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	n, err := root.Materialize()
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	return n
}

func TestCollect_WalksTheTree(t *testing.T) {
	n := compilePets(t)
	prefill := map[string]any{"nick": "jd"}
	driver := &stubDriver{
		inputs:    []string{"J", "Jane", "abc", "-1", "42", "PC"},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true, true, false},
		passwords: []string{"hunter2"},
	}
	collector := New(WithDriver(driver), WithPrefill(prefill))

	got, err := collector.Collect(context.Background(), n)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]any{
		"name":       "Jane",
		"age":        int64(42),
		"kind":       "dog",
		"vaccinated": true,
		"colors":     []any{"red", "blue"},
		"secret":     "hunter2",
		"devices":    []any{map[string]any{"kind": "PC"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}

	if got := len(driver.invalidMessages()); got != 3 {
		t.Fatalf("expected three rejected answers, got %v", driver.invalidMessages())
	}
	if !containsMessage(driver.infoMessages, "nick: jd (readonly)") {
		t.Fatalf("expected the readonly value to be shown, got %v", driver.infoMessages)
	}

	record, err := n.Bind(node.Bindings{node.BindingData: prefill}).Deserialize(got)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if record.(map[string]any)["nick"] != "jd" {
		t.Fatalf("expected the bound readonly value, got %v", record)
	}
}

func TestCollect_SkipsOptionalValues(t *testing.T) {
	n := compilePets(t)
	driver := &stubDriver{
		inputs:    []string{"Rex", "3"},
		selectIdx: []int{0},
		multiIdx:  [][]int{{}},
		confirm:   []bool{false, false},
		passwords: []string{""},
	}

	got, err := New(WithDriver(driver)).Collect(context.Background(), n)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]any{"name": "Rex", "age": int64(3), "kind": "cat", "vaccinated": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_RequiredBlankIsRejected(t *testing.T) {
	n := node.New(node.KindMapping, node.WithChildren(
		node.New(node.KindString, node.WithName("title")),
	))
	driver := &stubDriver{inputs: []string{"  ", "Hello"}}

	got, err := New(WithDriver(driver)).Collect(context.Background(), n)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"title": "Hello"}, got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Invalid title: Required"}, driver.invalidMessages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_DriverErrorsAbort(t *testing.T) {
	n := compilePets(t)
	_, err := New(WithDriver(&stubDriver{})).Collect(context.Background(), n)
	if err == nil {
		t.Fatalf("expected the driver error to abort collection")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(WithDriver(&stubDriver{})).Collect(ctx, n); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		kind   node.Kind
		answer string
		want   any
		fails  bool
	}{
		{kind: node.KindInteger, answer: " 12 ", want: int64(12)},
		{kind: node.KindInteger, answer: "1.5", fails: true},
		{kind: node.KindFloat, answer: "1.5", want: 1.5},
		{kind: node.KindString, answer: " padded ", want: " padded "},
		{kind: node.KindDate, answer: "", want: nil},
	}
	for _, tc := range cases {
		got, err := parseAnswer(tc.kind, tc.answer)
		if tc.fails {
			if err == nil {
				t.Fatalf("%s %q: expected an error", tc.kind, tc.answer)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s %q: %v", tc.kind, tc.answer, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s %q mismatch (-want +got):\n%s", tc.kind, tc.answer, diff)
		}
	}
}

func containsMessage(messages []string, want string) bool {
	for _, msg := range messages {
		if msg == want {
			return true
		}
	}
	return false
}
