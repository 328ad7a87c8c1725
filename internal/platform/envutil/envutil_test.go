package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("TICK", "15s")
	if got := Duration("TICK", time.Minute); got != 15*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("TICK", "900")
	if got := Duration("TICK", time.Minute); got != 15*time.Minute {
		t.Fatalf("got %v", got)
	}
	t.Setenv("TICK", "-3s")
	if got := Duration("TICK", time.Minute); got != time.Minute {
		t.Fatalf("negative duration should fall back, got %v", got)
	}
}

func TestScalars(t *testing.T) {
	t.Setenv("N", "x")
	if Int("N", 7) != 7 {
		t.Fatalf("bad int should fall back")
	}
	t.Setenv("F", "0.15")
	if Float("F", 1) != 0.15 {
		t.Fatalf("float not parsed")
	}
	t.Setenv("B", "off")
	if Bool("B", true) {
		t.Fatalf("bool not parsed")
	}
	if String("UNSET_VAR_FOR_TEST", "d") != "d" {
		t.Fatalf("string default not used")
	}
}

func TestList(t *testing.T) {
	t.Setenv("ORIGINS", " http://a , ,http://b")
	got := List("ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected list: %#v", got)
	}
}
