package expand

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/getmockd/htmlgen/pkg/dom/htmldom"
	"github.com/getmockd/htmlgen/pkg/dom/xmldom"
	"github.com/getmockd/htmlgen/pkg/formula"
	"github.com/getmockd/htmlgen/pkg/include"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, markup string) dom.Node {
	t.Helper()
	root, err := htmldom.New().Parse(markup, dom.ModeFragment)
	require.NoError(t, err)
	return root
}

func markup(t *testing.T, n dom.Node) string {
	t.Helper()
	s, err := n.Markup()
	require.NoError(t, err)
	return s
}

// expandHTML parses markup as a fragment, expands it and returns the
// serialized result with the recorded diagnostics.
func expandHTML(t *testing.T, src string, data any, cfg Config, opts ...Option) (string, *diag.Collector) {
	t.Helper()
	root := parseHTML(t, src)
	c := &diag.Collector{}
	opts = append([]Option{WithSink(c.Sink())}, opts...)
	require.NoError(t, Expand(context.Background(), root, data, cfg, opts...))
	return markup(t, root), c
}

func TestExpand_Directives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data any
		want string
	}{
		{
			name: "text",
			src:  `<template data-gen-scope=""><p data-gen-text="title"></p></template>`,
			data: map[string]any{"title": "Hello"},
			want: `<template data-gen-scope=""><p data-gen-text="title"></p></template><p data-gen-cloned="">Hello</p>`,
		},
		{
			name: "text is escaped",
			src:  `<template data-gen-scope><p data-gen-text="title"></p></template>`,
			data: map[string]any{"title": "<b>bold</b>"},
			want: `<template data-gen-scope=""><p data-gen-text="title"></p></template><p data-gen-cloned="">&lt;b&gt;bold&lt;/b&gt;</p>`,
		},
		{
			name: "undefined text renders empty",
			src:  `<template data-gen-scope><p data-gen-text="nope">old</p></template>`,
			data: map[string]any{},
			want: `<template data-gen-scope=""><p data-gen-text="nope">old</p></template><p data-gen-cloned=""></p>`,
		},
		{
			name: "html",
			src:  `<template data-gen-scope><div data-gen-html="body"></div></template>`,
			data: map[string]any{"body": "<b>hi</b> there"},
			want: `<template data-gen-scope=""><div data-gen-html="body"></div></template><div data-gen-cloned=""><b>hi</b> there</div>`,
		},
		{
			name: "json",
			src:  `<template data-gen-scope><script type="application/json" data-gen-json="cfg"></script></template>`,
			data: map[string]any{"cfg": map[string]any{"a": 1, "b": []any{"x"}}},
			want: `<template data-gen-scope=""><script type="application/json" data-gen-json="cfg"></script></template>` +
				`<script data-gen-cloned="" type="application/json">{"a":1,"b":["x"]}</script>`,
		},
		{
			name: "json of undefined is null",
			src:  `<template data-gen-scope><script data-gen-json="missing"></script></template>`,
			data: map[string]any{},
			want: `<template data-gen-scope=""><script data-gen-json="missing"></script></template><script data-gen-cloned="">null</script>`,
		},
		{
			name: "attrs set and remove",
			src:  `<template data-gen-scope><a title="old" data-gen-attrs="href: link.url, title: link.title, : skipped, broken">x</a></template>`,
			data: map[string]any{"link": map[string]any{"url": "/docs", "title": nil}},
			want: `<template data-gen-scope=""><a title="old" data-gen-attrs="href: link.url, title: link.title, : skipped, broken">x</a></template>` +
				`<a data-gen-cloned="" href="/docs">x</a>`,
		},
		{
			name: "attrs stringify numbers and lists",
			src:  `<template data-gen-scope><i data-gen-attrs="data-n: n, data-l: l">.</i></template>`,
			data: map[string]any{"n": 2.5, "l": []any{1, "a"}},
			want: `<template data-gen-scope=""><i data-gen-attrs="data-n: n, data-l: l">.</i></template><i data-gen-cloned="" data-n="2.5" data-l="[1,a]">.</i>`,
		},
		{
			name: "element if",
			src:  `<template data-gen-scope><p data-gen-if="show">a</p><p data-gen-if="hide">b</p><p>c</p></template>`,
			data: map[string]any{"show": 1, "hide": ""},
			want: `<template data-gen-scope=""><p data-gen-if="show">a</p><p data-gen-if="hide">b</p><p>c</p></template>` +
				`<p data-gen-cloned="">a</p><p data-gen-cloned="">c</p>`,
		},
		{
			name: "marker if false",
			src:  `<template data-gen-scope data-gen-if="flags.on"><p>x</p></template>`,
			data: map[string]any{"flags": map[string]any{"on": false}},
			want: `<template data-gen-scope="" data-gen-if="flags.on"><p>x</p></template>`,
		},
		{
			name: "empty list is truthy",
			src:  `<template data-gen-scope data-gen-if="items"><p>x</p></template>`,
			data: map[string]any{"items": []any{}},
			want: `<template data-gen-scope="" data-gen-if="items"><p>x</p></template><p data-gen-cloned="">x</p>`,
		},
		{
			name: "comment marker",
			src:  `<template data-gen-scope data-gen-comment><p>x</p></template>`,
			want: `<template data-gen-scope="" data-gen-comment=""><p>x</p></template>`,
		},
		{
			name: "comment element",
			src:  `<template data-gen-scope><p data-gen-comment>note</p><p>kept</p></template>`,
			want: `<template data-gen-scope=""><p data-gen-comment="">note</p><p>kept</p></template><p data-gen-cloned="">kept</p>`,
		},
		{
			name: "text nodes between elements are not promoted",
			src:  "<template data-gen-scope>\n  <b>1</b>\n  <i>2</i>\n</template>",
			want: "<template data-gen-scope=\"\">\n  <b>1</b>\n  <i>2</i>\n</template><b data-gen-cloned=\"\">1</b><i data-gen-cloned=\"\">2</i>",
		},
		{
			name: "stale clones in content are dropped",
			src:  `<template data-gen-scope><ul><li data-gen-cloned="">stale</li><li>fresh</li></ul></template>`,
			want: `<template data-gen-scope=""><ul><li data-gen-cloned="">stale</li><li>fresh</li></ul></template><ul data-gen-cloned=""><li>fresh</li></ul>`,
		},
		{
			name: "jsonpath formula",
			src:  `<template data-gen-scope><p data-gen-text="$.users[1].name"></p></template>`,
			data: map[string]any{"users": []any{map[string]any{"name": "ann"}, map[string]any{"name": "bob"}}},
			want: `<template data-gen-scope=""><p data-gen-text="$.users[1].name"></p></template><p data-gen-cloned="">bob</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := expandHTML(t, tt.src, tt.data, Config{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_Repeat(t *testing.T) {
	data := map[string]any{"items": []any{"a", "b", "c"}}

	t.Run("insert after keeps order", func(t *testing.T) {
		got, _ := expandHTML(t,
			`<ul><template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="item"><li data-gen-text="item"></li></template><li>last</li></ul>`,
			data, Config{})
		assert.Equal(t,
			`<ul><template data-gen-scope="" data-gen-repeat="items" data-gen-repeat-name="item"><li data-gen-text="item"></li></template>`+
				`<li data-gen-cloned="">a</li><li data-gen-cloned="">b</li><li data-gen-cloned="">c</li><li>last</li></ul>`,
			got)
	})

	t.Run("insert before keeps order", func(t *testing.T) {
		got, _ := expandHTML(t,
			`<ul><li>first</li><template data-gen-scope data-gen-insert-before data-gen-repeat="items" data-gen-repeat-name="item"><li data-gen-text="item"></li></template></ul>`,
			data, Config{})
		assert.Equal(t,
			`<ul><li>first</li><li data-gen-cloned="">a</li><li data-gen-cloned="">b</li><li data-gen-cloned="">c</li>`+
				`<template data-gen-scope="" data-gen-insert-before="" data-gen-repeat="items" data-gen-repeat-name="item"><li data-gen-text="item"></li></template></ul>`,
			got)
	})

	t.Run("item binding shadows data and sees siblings", func(t *testing.T) {
		got, _ := expandHTML(t,
			`<template data-gen-scope data-gen-repeat="people" data-gen-repeat-name="title"><p data-gen-text="title.name" data-gen-attrs="class: theme"></p></template>`,
			map[string]any{"title": "page", "theme": "dark", "people": []any{map[string]any{"name": "ann"}}},
			Config{})
		assert.Contains(t, got, `<p data-gen-cloned="" class="dark">ann</p>`)
	})

	t.Run("empty list produces nothing", func(t *testing.T) {
		got, _ := expandHTML(t,
			`<template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="i"><p>x</p></template>`,
			map[string]any{"items": []string{}}, Config{})
		assert.Equal(t, `<template data-gen-scope="" data-gen-repeat="items" data-gen-repeat-name="i"><p>x</p></template>`, got)
	})

	t.Run("typed slices and structs", func(t *testing.T) {
		type row struct {
			Name  string `json:"name"`
			Count int
		}
		got, _ := expandHTML(t,
			`<table><tbody><template data-gen-scope data-gen-repeat="rows" data-gen-repeat-name="r"><tr><td data-gen-text="r.name"></td><td data-gen-text="r.Count"></td></tr></template></tbody></table>`,
			map[string]any{"rows": []row{{"a", 1}, {"b", 2}}}, Config{})
		assert.Contains(t, got, `<tr data-gen-cloned=""><td>a</td><td>1</td></tr><tr data-gen-cloned=""><td>b</td><td>2</td></tr></tbody>`)
	})

	t.Run("length of a list", func(t *testing.T) {
		got, _ := expandHTML(t,
			`<template data-gen-scope><span data-gen-text="items.length"></span></template>`,
			data, Config{})
		assert.Contains(t, got, `<span data-gen-cloned="">3</span>`)
	})
}

func TestExpand_Nested(t *testing.T) {
	data := map[string]any{
		"groups": []any{
			map[string]any{"name": "A", "items": []any{1, 2}},
			map[string]any{"name": "B", "items": []any{3}},
		},
	}
	src := `<template data-gen-scope data-gen-repeat="groups" data-gen-repeat-name="g">` +
		`<section><h2 data-gen-text="g.name"></h2>` +
		`<template data-gen-scope data-gen-repeat="g.items" data-gen-repeat-name="it"><span data-gen-text="it"></span></template>` +
		`</section></template>`

	got, c := expandHTML(t, src, data, Config{})

	want := `<section data-gen-cloned=""><h2>A</h2><span>1</span><span>2</span></section>` +
		`<section data-gen-cloned=""><h2>B</h2><span>3</span></section>`
	assert.True(t, strings.HasSuffix(got, want), "got %s", got)
	assert.Empty(t, c.Entries())

	// the nested marker was transient scaffolding
	assert.Equal(t, 2, strings.Count(got, "<template"))
}

func TestExpand_NestedSeesOuterBinding(t *testing.T) {
	src := `<template data-gen-scope data-gen-repeat="users" data-gen-repeat-name="u">` +
		`<div><template data-gen-scope data-gen-repeat="u.tags" data-gen-repeat-name="tag">` +
		`<em data-gen-text="tag" data-gen-attrs="title: u.name"></em></template></div></template>`
	data := map[string]any{"users": []any{map[string]any{"name": "ann", "tags": []any{"x", "y"}}}}

	got, _ := expandHTML(t, src, data, Config{})

	assert.Contains(t, got, `<div data-gen-cloned=""><em title="ann">x</em><em title="ann">y</em></div>`)
}

func TestExpand_Idempotent(t *testing.T) {
	src := `<ul><template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="i"><li data-gen-text="i"></li></template></ul>`
	root := parseHTML(t, src)
	data := map[string]any{"items": []any{"a", "b"}}
	e := New(Config{}, WithSink(nil))

	require.NoError(t, e.Expand(context.Background(), root, data))
	first := markup(t, root)
	require.NoError(t, e.Expand(context.Background(), root, data))
	assert.Equal(t, first, markup(t, root))

	// new data replaces the old output instead of appending to it
	require.NoError(t, e.Expand(context.Background(), root, map[string]any{"items": []any{"z"}}))
	assert.Equal(t,
		`<ul><template data-gen-scope="" data-gen-repeat="items" data-gen-repeat-name="i"><li data-gen-text="i"></li></template><li data-gen-cloned="">z</li></ul>`,
		markup(t, root))
}

func TestExpand_Scopes(t *testing.T) {
	src := `<template data-gen-scope="nav"><a data-gen-text="nav"></a></template>` +
		`<template data-gen-scope="body footer"><p data-gen-text="body"></p></template>` +
		`<template data-gen-scope=" "><hr></template>`
	data := map[string]any{"nav": "N", "body": "B"}

	t.Run("active scope selects markers", func(t *testing.T) {
		got, _ := expandHTML(t, src, data, Config{Scope: "nav"})
		assert.Contains(t, got, `<a data-gen-cloned="nav">N</a>`)
		assert.NotContains(t, got, `<p data-gen-cloned`)
		// blank scope attribute matches any active scope
		assert.Contains(t, got, `<hr data-gen-cloned="nav"/>`)
	})

	t.Run("multi token scope", func(t *testing.T) {
		got, _ := expandHTML(t, src, data, Config{Scope: "footer"})
		assert.Contains(t, got, `<p data-gen-cloned="footer">B</p>`)
		assert.NotContains(t, got, `<a data-gen-cloned`)
	})

	t.Run("empty scope expands all", func(t *testing.T) {
		got, _ := expandHTML(t, src, data, Config{})
		assert.Contains(t, got, `<a data-gen-cloned="">N</a>`)
		assert.Contains(t, got, `<p data-gen-cloned="">B</p>`)
	})

	t.Run("re-expanding one scope keeps the other", func(t *testing.T) {
		root := parseHTML(t, src)
		ctx := context.Background()
		require.NoError(t, Expand(ctx, root, data, Config{Scope: "nav"}, WithSink(nil)))
		require.NoError(t, Expand(ctx, root, data, Config{Scope: "body"}, WithSink(nil)))
		require.NoError(t, Expand(ctx, root, map[string]any{"nav": "N2"}, Config{Scope: "nav"}, WithSink(nil)))

		got := markup(t, root)
		assert.Contains(t, got, `<a data-gen-cloned="nav">N2</a>`)
		assert.NotContains(t, got, `>N</a>`)
		assert.Contains(t, got, `<p data-gen-cloned="body">B</p>`)
		assert.Equal(t, 1, strings.Count(got, `<p data-gen-cloned="body">`))
	})

	t.Run("empty scope purges every clone", func(t *testing.T) {
		root := parseHTML(t, `<p data-gen-cloned="a">1</p><p data-gen-cloned="b">2</p><p>3</p>`)
		require.NoError(t, Expand(context.Background(), root, nil, Config{}, WithSink(nil)))
		assert.Equal(t, `<p>3</p>`, markup(t, root))
	})
}

func TestExpand_PromoteStripsNestedMarkers(t *testing.T) {
	src := `<template data-gen-scope="a">` +
		`<template data-gen-scope="b"><i data-gen-text="v"></i></template>` +
		`<div><template data-gen-scope="b"><i data-gen-text="v"></i></template></div>` +
		`</template>`
	root := parseHTML(t, src)
	ctx := context.Background()

	require.NoError(t, Expand(ctx, root, map[string]any{"v": "V"}, Config{Scope: "a"}, WithSink(nil)))
	want := src +
		`<template data-gen-cloned="a"><i data-gen-text="v"></i></template>` +
		`<div data-gen-cloned="a"><template><i data-gen-text="v"></i></template></div>`
	assert.Equal(t, want, markup(t, root))

	// the stripped copies are no longer markers of scope b
	require.NoError(t, Expand(ctx, root, map[string]any{"v": "V"}, Config{Scope: "b"}, WithSink(nil)))
	assert.Equal(t, want, markup(t, root))
}

func TestExpand_RepeatElementIf(t *testing.T) {
	got, c := expandHTML(t,
		`<template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="it">`+
			`<p data-gen-if="it.on" data-gen-text="it.n"></p><b data-gen-text="it.n"></b></template>`,
		map[string]any{"items": []any{
			map[string]any{"n": 1, "on": true},
			map[string]any{"n": 2, "on": false},
			map[string]any{"n": 3, "on": true},
		}},
		Config{})

	assert.True(t, strings.HasSuffix(got,
		`</template><p data-gen-cloned="">1</p><b data-gen-cloned="">1</b>`+
			`<b data-gen-cloned="">2</b>`+
			`<p data-gen-cloned="">3</p><b data-gen-cloned="">3</b>`), got)
	assert.Empty(t, c.Entries())
}

func TestExpand_CustomNaming(t *testing.T) {
	got, _ := expandHTML(t,
		`<template x-scope><p x-text="v" data-gen-text="ignored"></p></template><template data-gen-scope><b>no</b></template>`,
		map[string]any{"v": "yes"},
		Config{AttributePrefix: "x"})

	assert.Contains(t, got, `<p x-cloned="" data-gen-text="ignored">yes</p>`)
	assert.NotContains(t, got, `<b x-cloned`)
}

func TestExpand_CustomTemplateTag(t *testing.T) {
	got, _ := expandHTML(t,
		`<div><gen-block data-gen-scope><p data-gen-text="v"></p></gen-block></div>`,
		map[string]any{"v": "ok"},
		Config{TemplateTagName: "gen-block"})

	assert.Contains(t, got, `</gen-block><p data-gen-cloned="">ok</p></div>`)
}

func TestExpand_UndefinedIntermediatePath(t *testing.T) {
	got, c := expandHTML(t,
		`<template data-gen-scope><p data-gen-text="user.address.city"></p><p data-gen-text="user.name"></p></template>`,
		map[string]any{"user": map[string]any{}}, Config{})

	assert.Contains(t, got, `<p data-gen-cloned=""></p><p data-gen-cloned=""></p>`)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, diag.LevelWarn, entries[0].Level)
	assert.Equal(t, "user.address.city", entries[0].Fields.Formula)
	assert.Equal(t, "user.address", entries[0].Fields.Path)
	assert.NotEmpty(t, entries[0].Fields.Run)
}

func TestExpand_RepeatErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		data    any
		wantErr error
	}{
		{
			name:    "missing repeat name",
			src:     `<template data-gen-scope data-gen-repeat="items"><p></p></template>`,
			data:    map[string]any{"items": []any{1}},
			wantErr: ErrMissingRepeatName,
		},
		{
			name:    "blank repeat name",
			src:     `<template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="  "><p></p></template>`,
			data:    map[string]any{"items": []any{1}},
			wantErr: ErrMissingRepeatName,
		},
		{
			name:    "not a list",
			src:     `<template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="i"><p></p></template>`,
			data:    map[string]any{"items": "abc"},
			wantErr: ErrRepeatNotList,
		},
		{
			name:    "undefined list",
			src:     `<template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="i"><p></p></template>`,
			data:    map[string]any{},
			wantErr: ErrRepeatNotList,
		},
		{
			name: "nested marker error propagates",
			src: `<template data-gen-scope><div><template data-gen-scope data-gen-repeat="x">` +
				`<p></p></template></div></template>`,
			data:    map[string]any{"x": []any{1}},
			wantErr: ErrMissingRepeatName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseHTML(t, tt.src)
			c := &diag.Collector{}

			err := Expand(context.Background(), root, tt.data, Config{}, WithSink(c.Sink()))

			require.ErrorIs(t, err, tt.wantErr)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "template", cerr.Tag)
			assert.Equal(t, "data-gen-repeat", cerr.Attribute)
			assert.Equal(t, 1, c.Count(diag.LevelError))
			// nothing is spliced on failure
			assert.NotContains(t, markup(t, root), "data-gen-cloned")
		})
	}
}

func TestExpand_Include(t *testing.T) {
	src := `<template data-gen-scope data-gen-include="header"><p>fallback</p></template>`

	t.Run("resolved markup is promoted", func(t *testing.T) {
		r := include.Map{"header": `<header class="top" data-gen-text="title">H</header><nav>n</nav>`}
		got, c := expandHTML(t, src, map[string]any{"title": "T"}, Config{}, WithIncludeResolver(r))

		assert.Equal(t,
			`<template data-gen-scope="" data-gen-include="header"><p>fallback</p></template>`+
			`<header data-gen-cloned="" class="top">H</header><nav data-gen-cloned="">n</nav>`, got)
		assert.Empty(t, c.Entries())
	})

	t.Run("resolver receives key and context", func(t *testing.T) {
		var gotKey string
		var gotData any
		r := include.Func(func(_ context.Context, key string, data formula.Context) (string, error) {
			gotKey = key
			gotData = data.Value()
			return "<i>x</i>", nil
		})
		_, _ = expandHTML(t,
			`<template data-gen-scope data-gen-include=" card " data-gen-repeat="ignored"></template>`,
			map[string]any{"a": 1}, Config{}, WithIncludeResolver(r))

		assert.Equal(t, "card", gotKey)
		assert.Equal(t, map[string]any{"a": 1}, gotData)
	})

	t.Run("not found", func(t *testing.T) {
		got, c := expandHTML(t, src, nil, Config{}, WithIncludeResolver(include.Map{}))

		assert.NotContains(t, got, "data-gen-cloned")
		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, diag.LevelError, entries[0].Level)
		assert.Equal(t, "include not found", entries[0].Message)
		assert.Equal(t, "header", entries[0].Fields.Key)
		assert.ErrorIs(t, entries[0].Fields.Error, include.ErrNotFound)
	})

	t.Run("resolver failure", func(t *testing.T) {
		r := include.Func(func(context.Context, string, formula.Context) (string, error) {
			return "", errors.New("backend down")
		})
		data := map[string]any{"v": "ok"}
		got, c := expandHTML(t,
			src+`<template data-gen-scope><p data-gen-text="v"></p></template>`,
			data, Config{}, WithIncludeResolver(r))

		assert.Contains(t, got, `</template><p data-gen-cloned="">ok</p>`)
		assert.Equal(t, 1, strings.Count(got, "data-gen-cloned"))
		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "include resolver failed", entries[0].Message)
		assert.ErrorContains(t, entries[0].Fields.Error, "backend down")
		assert.Equal(t, data, entries[0].Fields.Data)
	})

	t.Run("no resolver configured", func(t *testing.T) {
		got, c := expandHTML(t, src, nil, Config{})

		assert.NotContains(t, got, "data-gen-cloned")
		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "include resolver not configured", entries[0].Message)
		assert.ErrorIs(t, entries[0].Fields.Error, include.ErrNoResolver)
	})

	t.Run("marker if is checked first", func(t *testing.T) {
		var calls atomic.Int32
		r := include.Func(func(context.Context, string, formula.Context) (string, error) {
			calls.Add(1)
			return "<i>x</i>", nil
		})
		_, _ = expandHTML(t,
			`<template data-gen-scope data-gen-if="off" data-gen-include="k"></template>`,
			map[string]any{"off": false}, Config{}, WithIncludeResolver(r))

		assert.Zero(t, calls.Load())
	})
}

func TestExpand_FatalErrorCancelsSiblings(t *testing.T) {
	r := include.Func(func(ctx context.Context, _ string, _ formula.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	root := parseHTML(t,
		`<template data-gen-scope data-gen-include="slow"></template>`+
			`<template data-gen-scope data-gen-repeat="x"><p></p></template>`)
	c := &diag.Collector{}

	err := Expand(context.Background(), root, map[string]any{"x": []any{1}}, Config{},
		WithIncludeResolver(r), WithSink(c.Sink()), WithConcurrency(2))

	require.ErrorIs(t, err, ErrMissingRepeatName)
	// the cancelled include does not report
	for _, e := range c.Entries() {
		assert.NotEqual(t, "include resolver failed", e.Message)
	}
}

func TestExpand_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := parseHTML(t, `<template data-gen-scope><p>x</p></template>`)
	err := Expand(ctx, root, nil, Config{}, WithSink(nil))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpand_NilRoot(t *testing.T) {
	assert.ErrorIs(t, Expand(context.Background(), nil, nil, Config{}), ErrNilRoot)
}

func TestExpand_ConcurrencyKeepsOrder(t *testing.T) {
	items := make([]any, 200)
	var want strings.Builder
	for i := range items {
		items[i] = i
		fmt.Fprintf(&want, `<li data-gen-cloned="">%d</li>`, i)
	}
	src := `<ul><template data-gen-scope data-gen-repeat="items" data-gen-repeat-name="i"><li data-gen-text="i"></li></template></ul>`

	for _, n := range []int{1, 4, 64} {
		t.Run(fmt.Sprintf("limit %d", n), func(t *testing.T) {
			got, _ := expandHTML(t, src, map[string]any{"items": items}, Config{}, WithConcurrency(n))
			assert.Contains(t, got, "</template>"+want.String()+"</ul>")
		})
	}
}

func TestExpand_Document(t *testing.T) {
	root, err := htmldom.New().Parse(
		`<!DOCTYPE html><html><head><title>t</title></head><body><main><template data-gen-scope><h1 data-gen-text="title"></h1></template></main></body></html>`,
		dom.ModeHTML)
	require.NoError(t, err)

	require.NoError(t, Expand(context.Background(), root, map[string]any{"title": "Docs"}, Config{}, WithSink(nil)))

	got := markup(t, root)
	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, `</template><h1 data-gen-cloned="">Docs</h1></main>`)
}

func TestExpand_XML(t *testing.T) {
	root, err := xmldom.New().Parse(
		`<feed><template data-gen-scope="" data-gen-repeat="entries" data-gen-repeat-name="e"><entry data-gen-attrs="id: e.id"><title data-gen-text="e.title"/></entry></template></feed>`,
		dom.ModeXML)
	require.NoError(t, err)
	data := map[string]any{"entries": []any{
		map[string]any{"id": "1", "title": "One"},
		map[string]any{"id": "2", "title": "Two & more"},
	}}

	require.NoError(t, Expand(context.Background(), root, data, Config{}, WithSink(nil)))

	got := markup(t, root)
	assert.Contains(t, got, `<entry data-gen-cloned="" id="1"><title>One</title></entry><entry data-gen-cloned="" id="2"><title>Two &amp; more</title></entry></feed>`)

	require.NoError(t, Expand(context.Background(), root, data, Config{}, WithSink(nil)))
	assert.Equal(t, got, markup(t, root))
}

func TestEngine_Accessors(t *testing.T) {
	e := New(Config{Scope: "  main "})

	assert.Equal(t, "main", e.Config().Scope)
	assert.Equal(t, "data-gen", e.Config().AttributePrefix)
	assert.Equal(t, "data-gen-text", e.Schema().Name("text"))
}
