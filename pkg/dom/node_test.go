package dom

import (
	"strings"
	"testing"
)

const testPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<main id="app" class="loading">
  <p id="name">Jane</p>
  <ul id="list"><li class="item">one</li></ul>
</main>
</body></html>`

func mustParse(t *testing.T) Node {
	t.Helper()
	doc, err := ParseString(testPage)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc
}

func mustByID(t *testing.T, doc Node, id string) Node {
	t.Helper()
	n, ok := doc.ElementByID(id)
	if !ok {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func TestNode_ElementByID(t *testing.T) {
	doc := mustParse(t)
	main := mustByID(t, doc, "app")
	if main.Tag() != "main" {
		t.Errorf("Tag() = %q, want main", main.Tag())
	}
	if _, ok := doc.ElementByID("missing"); ok {
		t.Error("expected missing id to be absent")
	}
}

func TestNode_Identity(t *testing.T) {
	doc := mustParse(t)
	a := mustByID(t, doc, "app")
	b := mustByID(t, doc, "app")
	if a.Identity() != b.Identity() {
		t.Error("two handles of the same element should share an identity")
	}
	name := mustByID(t, doc, "name")
	if a.Identity() == name.Identity() {
		t.Error("distinct elements should have distinct identities")
	}
}

func TestNode_Classes(t *testing.T) {
	doc := mustParse(t)
	main := mustByID(t, doc, "app")

	main.RemoveClass("error", "load-success", "loading")
	main.AddClass("error")
	if got, _ := main.Attr("class"); got != "error" {
		t.Errorf("class = %q, want %q", got, "error")
	}

	main.AddClass("error", "wide")
	if got, _ := main.Attr("class"); got != "error wide" {
		t.Errorf("class = %q, want %q", got, "error wide")
	}
	if !main.HasClass("wide") || main.HasClass("loading") {
		t.Error("HasClass reported the wrong membership")
	}
}

func TestNode_Text(t *testing.T) {
	doc := mustParse(t)
	name := mustByID(t, doc, "name")
	if name.Text() != "Jane" {
		t.Errorf("Text() = %q, want Jane", name.Text())
	}
	name.SetText("Mr <Bob>")
	if name.Text() != "Mr <Bob>" {
		t.Errorf("Text() = %q after SetText", name.Text())
	}
	if got := name.OuterHTML(); got != `<p id="name">Mr &lt;Bob&gt;</p>` {
		t.Errorf("OuterHTML() = %q", got)
	}
}

func TestNode_Style(t *testing.T) {
	doc := mustParse(t)
	main := mustByID(t, doc, "app")

	main.SetStyle("stroke-dashoffset", "1870")
	main.SetStyle("color", "red")
	main.SetStyle("stroke-dashoffset", "0")
	if got, _ := main.Attr("style"); got != "stroke-dashoffset: 0; color: red;" {
		t.Errorf("style = %q", got)
	}
	if main.Style("color") != "red" {
		t.Errorf("Style(color) = %q", main.Style("color"))
	}

	main.SetStyle("stroke-dashoffset", "")
	main.SetStyle("color", "")
	if _, ok := main.Attr("style"); ok {
		t.Error("removing every property should drop the style attribute")
	}
}

func TestNode_AppendMarkup(t *testing.T) {
	doc := mustParse(t)
	list := mustByID(t, doc, "list")
	first := list.Children()[0]

	added, err := list.AppendMarkup(`<li class="item">two</li><li class="item">three</li>`)
	if err != nil {
		t.Fatalf("AppendMarkup failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added %d elements, want 2", len(added))
	}
	if added[1].Text() != "three" {
		t.Errorf("second added element text = %q", added[1].Text())
	}

	// Existing children keep their identity: no re-parse of the container.
	if list.Children()[0].Identity() != first.Identity() {
		t.Error("existing child was replaced by AppendMarkup")
	}

	items := doc.ElementsByClassName("item")
	if len(items) != 3 {
		t.Fatalf("ElementsByClassName found %d, want 3", len(items))
	}
	if items[2].Identity() != added[1].Identity() {
		t.Error("ElementsByClassName should return document order")
	}
}

func TestNode_AppendMarkupTextOnly(t *testing.T) {
	doc := mustParse(t)
	list := mustByID(t, doc, "list")
	added, err := list.AppendMarkup("just text")
	if err != nil {
		t.Fatalf("AppendMarkup failed: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("text-only markup should add no elements, got %d", len(added))
	}
	if !strings.HasSuffix(list.Text(), "just text") {
		t.Errorf("text was not appended: %q", list.Text())
	}
}

func TestNode_RemoveAndParent(t *testing.T) {
	doc := mustParse(t)
	name := mustByID(t, doc, "name")
	parent, ok := name.Parent()
	if !ok || parent.ID() != "app" {
		t.Fatalf("Parent() = %v, %v", parent.ID(), ok)
	}
	name.Remove()
	if _, ok := doc.ElementByID("name"); ok {
		t.Error("removed element is still reachable")
	}
}

func TestDescribe(t *testing.T) {
	doc := mustParse(t)
	tests := []struct {
		el   Element
		want string
	}{
		{mustByID(t, doc, "app"), "main#app"},
		{doc.ElementsByClassName("item")[0], "li.item"},
		{doc, "#document"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := Describe(tt.el); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
