package repository

import (
	"strings"
	"testing"
)

func TestDayBucketExprByDialectSQLite(t *testing.T) {
	got := dayBucketExprByDialect("sqlite", "recorded_at")
	want := "CAST(date(recorded_at) AS TEXT)"
	if got != want {
		t.Fatalf("sqlite day expr mismatch, want %s got %s", want, got)
	}
}

func TestDayBucketExprByDialectPostgres(t *testing.T) {
	got := dayBucketExprByDialect("postgres", "recorded_at")
	want := "to_char(recorded_at, 'YYYY-MM-DD')"
	if got != want {
		t.Fatalf("postgres day expr mismatch, want %s got %s", want, got)
	}
}

func TestBuildKeywordLikeCondition(t *testing.T) {
	condition, argCount := buildKeywordLikeCondition(nil, []string{"email", "display_name", " "})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if !strings.Contains(condition, "email LIKE ?") {
		t.Fatalf("condition should contain email LIKE, got %s", condition)
	}
	if !strings.Contains(condition, "display_name LIKE ?") {
		t.Fatalf("condition should contain display_name LIKE, got %s", condition)
	}
}

func TestBuildKeywordLikeConditionPostgres(t *testing.T) {
	condition, _ := buildKeywordLikeConditionByDialect("postgres", []string{"email"})
	if condition != "email ILIKE ?" {
		t.Fatalf("postgres condition want email ILIKE ?, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
