package subscription

import "testing"

func TestFlattenGroups(t *testing.T) {
	groups := []FeedGroup{
		{Name: "Tech", Feeds: []string{"a", "b"}},
		{Name: "News", Feeds: []string{"c"}},
	}
	got := FlattenGroups(groups, []string{"d"})
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFeedEntryAbsentFields(t *testing.T) {
	var entry FeedEntry
	if entry.LabelText() != "" || entry.URLText() != "" || entry.CategoryText() != "" {
		t.Fatalf("absent fields should read as empty, got %#v", entry)
	}

	label := "Go Blog"
	entry.Label = &label
	if entry.LabelText() != "Go Blog" {
		t.Fatalf("LabelText = %q", entry.LabelText())
	}

	var list FeedList
	if list.TitleText() != "" {
		t.Fatalf("TitleText = %q, want empty", list.TitleText())
	}
}
