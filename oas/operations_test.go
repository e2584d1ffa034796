package oas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationsOrder(t *testing.T) {
	item := &PathItem{
		Trace:  &Operation{OperationID: "trace"},
		Post:   &Operation{OperationID: "post"},
		Get:    &Operation{OperationID: "get"},
		Delete: &Operation{OperationID: "delete"},
	}

	var methods, ids []string
	for method, op := range item.Operations() {
		methods = append(methods, method)
		ids = append(ids, op.OperationID)
	}
	assert.Equal(t, []string{"get", "post", "delete", "trace"}, methods)
	assert.Equal(t, []string{"get", "post", "delete", "trace"}, ids)
}

func TestOperationsEarlyStop(t *testing.T) {
	item := &PathItem{Get: &Operation{}, Put: &Operation{}, Patch: &Operation{}}
	count := 0
	for range item.Operations() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestOperationsNilItem(t *testing.T) {
	var item *PathItem
	for range item.Operations() {
		t.Fatal("nil path item yielded an operation")
	}
	assert.Nil(t, item.Operation(MethodGet))
	assert.Nil(t, (&PathItem{}).Operation("query"))
}

func TestAllOperationsFollowsCallbacks(t *testing.T) {
	hook := &PathItem{Post: &Operation{OperationID: "onEvent"}}
	nested := &PathItem{Post: &Operation{OperationID: "onRetry"}}
	hook.Post.Callbacks = map[string]*Callback{
		"retry": {Expressions: map[string]*PathItem{"{$request.body#/retry}": nested}},
	}
	item := &PathItem{
		Get: &Operation{OperationID: "list"},
		Post: &Operation{
			OperationID: "subscribe",
			Callbacks: map[string]*Callback{
				"event": {Expressions: map[string]*PathItem{
					"{$request.body#/url}":   hook,
					"{$request.body#/again}": hook,
				}},
			},
		},
	}

	var ids []string
	for _, op := range item.AllOperations() {
		ids = append(ids, op.OperationID)
	}
	assert.Equal(t, []string{"list", "subscribe", "onEvent", "onRetry"}, ids)

	ids = nil
	for _, op := range item.Post.Callbacks["event"].AllOperations() {
		ids = append(ids, op.OperationID)
	}
	assert.Equal(t, []string{"onEvent", "onRetry"}, ids)

	var cb *Callback
	for range cb.AllOperations() {
		t.Fatal("nil callback yielded an operation")
	}
}

func TestStats(t *testing.T) {
	assert.Equal(t, DocumentStats{}, Stats(nil))

	doc := &Document{
		Paths: Paths{
			"/a": {Get: &Operation{}, Post: &Operation{}},
			"/b": {Head: &Operation{}},
		},
		Tags: []*Tag{{Name: "a"}},
		Components: &Components{
			Schemas:    map[string]*Schema{"A": {}, "B": {}},
			Parameters: map[string]*Parameter{"limit": {}},
		},
	}
	assert.Equal(t, DocumentStats{
		PathCount:      2,
		OperationCount: 3,
		SchemaCount:    2,
		ComponentCount: 3,
		TagCount:       1,
	}, Stats(doc))
}
