package resource

import "testing"

func TestFieldsWithDefaults(t *testing.T) {
	got := Fields{Year: " 2024"}.withDefaults("notes.pdf")
	if got.Year != " 2024" {
		t.Fatalf("year must be kept verbatim, got %q", got.Year)
	}
	if got.Title != "notes.pdf" || got.Type != DefaultType || got.Folder != DefaultFolder {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	got = Fields{Title: " Week 1", Type: "questions", Folder: "OS "}.withDefaults("notes.pdf")
	if got.Title != " Week 1" || got.Type != "questions" || got.Folder != "OS " {
		t.Fatalf("supplied fields must be kept: %+v", got)
	}

	got = Fields{Title: "   ", Type: " ", Folder: "\t"}.withDefaults("a.txt")
	if got.Title != "a.txt" || got.Type != DefaultType || got.Folder != DefaultFolder {
		t.Fatalf("blank fields must default: %+v", got)
	}
}

func TestGroupByCategoryAlwaysHasNotesAndQuestions(t *testing.T) {
	grouped := GroupByCategory(nil)
	if _, ok := grouped[CategoryNotes]; !ok {
		t.Fatalf("expected notes category")
	}
	if _, ok := grouped[CategoryQuestions]; !ok {
		t.Fatalf("expected questions category")
	}
	if len(grouped) != 2 {
		t.Fatalf("expected only the two fixed categories, got %d", len(grouped))
	}
}

func TestGroupByCategoryPreservesOrder(t *testing.T) {
	list := []Resource{
		{Title: "b", Type: "notes", Folder: "OS"},
		{Title: "a", Type: "notes", Folder: "OS"},
		{Title: "c", Type: "lab", Folder: "Networks"},
	}
	grouped := GroupByCategory(list)

	os := grouped[CategoryNotes]["OS"]
	if len(os) != 2 || os[0].Title != "b" || os[1].Title != "a" {
		t.Fatalf("unexpected OS folder: %+v", os)
	}
	if len(grouped["lab"]["Networks"]) != 1 {
		t.Fatalf("expected lab category, got %+v", grouped)
	}
}
