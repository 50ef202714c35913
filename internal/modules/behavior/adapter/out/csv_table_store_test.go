package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	behaviorout "github.com/JHR999/behavior-tracker/internal/modules/behavior/adapter/out"
	"github.com/JHR999/behavior-tracker/internal/modules/behavior/domain"
	apperrors "github.com/JHR999/behavior-tracker/internal/platform/errors"
)

func writeTable(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Behavior Tracking - Sheet1.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return path
}

func TestLoadParsesRowsAndDirtyProbabilities(t *testing.T) {
	t.Parallel()
	path := writeTable(t, "\ufeffBehavior,Probability,Category,Prompt Time\n"+
		"Walk,51.0,scheduled,08:00\n"+
		"Floss,abc,Situational,\n"+
		"Stretch,0,scheduled,21:30\n"+
		"Read,120,scheduled,\n"+
		",40,scheduled,\n"+
		"Journal,,scheduled,22:00\n")
	store := behaviorout.NewCSVTableStore(path)

	table, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Behaviors) != 5 {
		t.Fatalf("expected 5 behaviors (blank name skipped), got %d", len(table.Behaviors))
	}
	want := map[string]int{"Walk": 51, "Floss": 50, "Stretch": 1, "Read": 99, "Journal": 50}
	for _, b := range table.Behaviors {
		if b.Probability != want[b.Name] {
			t.Fatalf("%s probability = %d, want %d", b.Name, b.Probability, want[b.Name])
		}
	}
	if !table.Behaviors[1].Category.IsSituational() {
		t.Fatalf("Floss should be situational")
	}
	if table.Behaviors[0].PromptTime != "08:00" {
		t.Fatalf("prompt time not read: %q", table.Behaviors[0].PromptTime)
	}
}

func TestLoadWithoutPromptTimeColumn(t *testing.T) {
	t.Parallel()
	path := writeTable(t, "behavior , PROBABILITY,category\nWalk,60,scheduled\n")
	table, err := behaviorout.NewCSVTableStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Behaviors) != 1 || table.Behaviors[0].PromptTime != "" || table.Behaviors[0].Probability != 60 {
		t.Fatalf("unexpected table: %+v", table.Behaviors)
	}
}

func TestLoadFailures(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"missing category": "Behavior,Probability\nWalk,50\n",
		"duplicate name":   "Behavior,Probability,Category\nWalk,50,scheduled\nWalk,60,scheduled\n",
		"empty file":       "",
	}
	for name, body := range cases {
		path := writeTable(t, body)
		if _, err := behaviorout.NewCSVTableStore(path).Load(context.Background()); !errors.Is(err, apperrors.ErrStorage) {
			t.Fatalf("%s: expected storage error, got %v", name, err)
		}
	}
	missing := behaviorout.NewCSVTableStore(filepath.Join(t.TempDir(), "nope.csv"))
	if _, err := missing.Load(context.Background()); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("missing file: expected storage error, got %v", err)
	}
}

func TestSaveLoadRoundTripPreservesColumnsAndExtras(t *testing.T) {
	t.Parallel()
	body := "Notes,Behavior,Category,Probability,Prompt Time\n" +
		"\"has, comma\",Walk,scheduled,40,08:00\n" +
		",Floss,situational,70,\n"
	path := writeTable(t, body)
	store := behaviorout.NewCSVTableStore(path)

	first, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first.Behaviors[0].Extra[0] != "has, comma" {
		t.Fatalf("extra column lost: %+v", first.Behaviors[0].Extra)
	}
	if err := store.Save(context.Background(), first); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != body {
		t.Fatalf("save(load()) should be byte-identical for a clean table\nwant:\n%s\ngot:\n%s", body, raw)
	}

	second, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if strings.Join(second.Columns, "|") != strings.Join(first.Columns, "|") {
		t.Fatalf("column order changed: %v vs %v", second.Columns, first.Columns)
	}
	for i := range first.Behaviors {
		a, b := first.Behaviors[i], second.Behaviors[i]
		if a.Name != b.Name || a.Probability != b.Probability || a.Category != b.Category || a.PromptTime != b.PromptTime {
			t.Fatalf("row %d changed across round trip: %+v vs %+v", i, a, b)
		}
	}
}

func TestSaveKeepsRepeatedAndBlankExtraHeaders(t *testing.T) {
	t.Parallel()
	body := "Behavior,Probability,Category,Note,Note,,\n" +
		"Walk,50,scheduled,first,second,a,b\n" +
		"Floss,60,situational,,only,,c\n"
	path := writeTable(t, body)
	store := behaviorout.NewCSVTableStore(path)

	table, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.Behaviors[0].Extra; got[3] != "first" || got[4] != "second" || got[5] != "a" || got[6] != "b" {
		t.Fatalf("extra cells should be kept per column: %+v", got)
	}
	if err := store.Save(context.Background(), table); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != body {
		t.Fatalf("repeated headers must round-trip\nwant:\n%s\ngot:\n%s", body, raw)
	}
}

func TestSecondCanonicalHeaderIsTreatedAsExtra(t *testing.T) {
	t.Parallel()
	body := "Behavior,Probability,Category,Probability\nWalk,40,scheduled,old value\n"
	path := writeTable(t, body)
	store := behaviorout.NewCSVTableStore(path)

	table, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Behaviors[0].Probability != 40 || table.Behaviors[0].Extra[3] != "old value" {
		t.Fatalf("first Probability column wins, second is carried: %+v", table.Behaviors[0])
	}
	table.Behaviors[0].Probability = 41
	if err := store.Save(context.Background(), table); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "Behavior,Probability,Category,Probability\nWalk,41,scheduled,old value\n" {
		t.Fatalf("unexpected table %q", raw)
	}
}

func TestLoadTrimsBehaviorNames(t *testing.T) {
	t.Parallel()
	path := writeTable(t, "Behavior,Probability,Category\n\" Walk \",50,scheduled\n")
	store := behaviorout.NewCSVTableStore(path)
	table, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Behaviors[0].Name != "Walk" || table.Index("Walk") != 0 {
		t.Fatalf("name should be trimmed to its key: %q", table.Behaviors[0].Name)
	}
	if err := store.Save(context.Background(), table); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "Behavior,Probability,Category\nWalk,50,scheduled\n" {
		t.Fatalf("saved name should be the trimmed key, got %q", raw)
	}
}

func TestSaveAddsCanonicalColumnWhenDataNeedsIt(t *testing.T) {
	t.Parallel()
	path := writeTable(t, "Behavior,Probability,Category\nWalk,50,scheduled\n")
	store := behaviorout.NewCSVTableStore(path)
	table, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	table.Behaviors[0].PromptTime = "07:15"
	if err := store.Save(context.Background(), table); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "Behavior,Probability,Category,Prompt Time\n") {
		t.Fatalf("expected Prompt Time column appended, got %q", raw)
	}
	reloaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Behaviors[0].PromptTime != "07:15" {
		t.Fatalf("prompt time not persisted: %+v", reloaded.Behaviors[0])
	}
}

func TestInitCreatesCanonicalHeaderOnce(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "table.csv")
	store := behaviorout.NewCSVTableStore(path)
	created, err := store.Init(context.Background())
	if err != nil || !created {
		t.Fatalf("init should create the table: created=%v err=%v", created, err)
	}
	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != strings.Join(domain.CanonicalColumns, ",") {
		t.Fatalf("unexpected header %q", raw)
	}
	created, err = store.Init(context.Background())
	if err != nil || created {
		t.Fatalf("second init must leave the table alone: created=%v err=%v", created, err)
	}
	table, err := store.Load(context.Background())
	if err != nil || len(table.Behaviors) != 0 {
		t.Fatalf("empty table should load cleanly: %v %+v", err, table)
	}
}

func TestSaveFailsWhenDirectoryIsNotWritable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	store := behaviorout.NewCSVTableStore(filepath.Join(blocker, "table.csv"))
	if err := store.Save(context.Background(), domain.NewTable()); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
