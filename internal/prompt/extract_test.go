package prompt

import (
	"testing"

	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
)

func TestExtractAdjacentValue(t *testing.T) {
	params := []spec.Parameter{
		{Name: "userId", In: "query", Type: "integer"},
		{Name: "_limit", In: "query", Type: "integer"},
	}

	got := Extract("get all posts for userId 7", params)
	if got["userId"] != "7" {
		t.Errorf("Expected userId=7, got %q", got["userId"])
	}
	if _, ok := got["_limit"]; ok {
		t.Error("Expected _limit to be absent when not named in the prompt")
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	params := []spec.Parameter{{Name: "postId", In: "path", Type: "integer"}}

	got := Extract("fetch POSTID 42 please", params)
	if got["postId"] != "42" {
		t.Errorf("Expected postId=42, got %q", got["postId"])
	}
}

func TestExtractPreservesValueCase(t *testing.T) {
	params := []spec.Parameter{{Name: "token", In: "query", Type: "string"}}
	got := Extract("authorize with TOKEN AbC123xYz", params)
	if got["token"] != "AbC123xYz" {
		t.Errorf("Expected the value casing to survive extraction, got %q", got["token"])
	}
}

func TestExtractPunctuationStripped(t *testing.T) {
	params := []spec.Parameter{{Name: "userId", In: "query", Type: "integer"}}

	got := Extract("posts for userId: 7.", params)
	if got["userId"] != "7" {
		t.Errorf("Expected userId=7, got %q", got["userId"])
	}
}

func TestExtractNameAtEndOfPrompt(t *testing.T) {
	params := []spec.Parameter{{Name: "userId", In: "query", Type: "integer"}}

	got := Extract("show me the userId", params)
	if _, ok := got["userId"]; ok {
		t.Error("Name with no following token must not produce a value")
	}
}

func TestExtractEmptyInputs(t *testing.T) {
	if got := Extract("", []spec.Parameter{{Name: "x"}}); len(got) != 0 {
		t.Errorf("Expected empty result for empty prompt, got %v", got)
	}
	if got := Extract("anything", nil); len(got) != 0 {
		t.Errorf("Expected empty result for no parameters, got %v", got)
	}
}
