package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

const recipesJSON = `[
  {"id": 1, "name": "Margarita", "ingredients": ["2 oz tequila", "1 oz lime juice", "0.5 oz triple sec"], "mainLiquor": ["tequila"], "difficulty": "easy"},
  {"id": "m-2", "name": "Mystery Mix", "ingredients": ["2 oz grain alcohol"], "mainLiquor": ["vodka"]},
  {"id": 4.0, "name": "Party Punch", "ingredients": ["20 oz juice"]}
]`

const recipesYAML = `
- id: 1
  name: Margarita
  ingredients: ["2 oz tequila", "1 oz lime juice", "0.5 oz triple sec"]
  mainLiquor: [tequila]
  difficulty: easy
- id: m-2
  name: Mystery Mix
  ingredients:
    - 2 oz grain alcohol
  mainLiquor: [vodka]
- id: 4.0
  name: Party Punch
  ingredients: [20 oz juice]
`

const recipesHTML = `<!doctype html>
<html><body><div id="recipe-grid">
  <article class="recipe-card" data-recipe-id="1" data-main-liquor="tequila" data-difficulty="easy">
    <h3> Margarita </h3>
    <ul><li>2 oz tequila</li><li>1 oz   lime juice</li><li>0.5 oz triple sec</li></ul>
  </article>
  <article class="recipe-card" data-recipe-id="m-2" data-main-liquor="vodka">
    <h3>Mystery Mix</h3>
    <ul><li>2 oz grain alcohol</li></ul>
  </article>
  <div data-recipe-id="4.0"><h3>Party Punch</h3><ul><li>20 oz juice</li></ul></div>
</div></body></html>`

func wantRecipes() []domain.Recipe {
	return []domain.Recipe{
		{ID: "1", Name: "Margarita", Ingredients: []string{"2 oz tequila", "1 oz lime juice", "0.5 oz triple sec"}, MainLiquor: []string{"tequila"}, Difficulty: "easy"},
		{ID: "m-2", Name: "Mystery Mix", Ingredients: []string{"2 oz grain alcohol"}, MainLiquor: []string{"vodka"}},
		{ID: "4.0", Name: "Party Punch", Ingredients: []string{"20 oz juice"}, MainLiquor: []string{}},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func TestLoad_AllFormatsDecodeTheSameRecipes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"recipes.json": recipesJSON,
		"recipes.yaml": recipesYAML,
		"recipes.html": recipesHTML,
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		writeFile(t, p, content)

		got, err := Load(context.Background(), p, Options{})
		require.NoError(t, err, name)
		if diff := cmp.Diff(wantRecipes(), got); diff != "" {
			t.Fatalf("%s 解码结果不符合预期 (-want +got):\n%s", name, diff)
		}
	}
}

func TestLoad_FormatOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "recipes.txt")
	writeFile(t, p, recipesYAML)

	_, err := Load(context.Background(), p, Options{})
	assert.Equal(t, ErrCodeInvalid, Code(err))

	got, err := Load(context.Background(), p, Options{Format: "yaml"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), Options{})
	assert.Equal(t, ErrCodeNotFound, Code(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"missing id":       `[{"id": 1, "name": "ok"}, {"name": "no id"}]`,
		"object id":        `[{"id": {"a": 1}, "name": "x"}]`,
		"missing name":     `[{"id": 1}]`,
		"null name":        `[{"id": 1, "name": null}]`,
		"capitalized name": `[{"id": 1, "Name": "x"}]`,
		"capitalized id":   `[{"ID": 1, "name": "x"}]`,
		"non-string name":  `[{"id": 1, "name": 5}]`,
		"bad ingredient":   `[{"id": 1, "name": "x", "ingredients": [1]}]`,
		"top-level object": `{"id": 1, "name": "x"}`,
		"malformed":        `[{"id": 1,`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "recipes.json")
			writeFile(t, p, content)

			got, err := Load(context.Background(), p, Options{})
			assert.Nil(t, got)
			assert.Equal(t, ErrCodeInvalid, Code(err), "err=%v", err)
		})
	}
}

func TestLoad_RecordErrorCarriesIndex(t *testing.T) {
	p := filepath.Join(t.TempDir(), "recipes.json")
	writeFile(t, p, `[{"id": 1, "name": "ok"}, {"id": 2}]`)

	_, err := Load(context.Background(), p, Options{})
	var re *RecordError
	require.True(t, errors.As(err, &re), "err=%v", err)
	assert.Equal(t, 1, re.Index)
	assert.True(t, errors.Is(err, errMissingName))
	assert.Contains(t, err.Error(), "第 2 条记录")
}

func TestJSON_IDDisplay(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.RecipeID
	}{
		{`"m-2"`, "m-2"},
		{`7`, "7"},
		{`-0`, "0"},
		{`12345678901234567890123`, "12345678901234567890123"},
		{`1.50`, "1.5"},
		{`4.0`, "4.0"},
		{`1e2`, "100.0"},
		{`1E16`, "1e+16"},
		{`0.00001`, "1e-05"},
		{`1e400`, "inf"},
		{`true`, "True"},
		{`false`, "False"},
		{`null`, "None"},
	}
	for _, c := range cases {
		got, err := JSON{}.Decode([]byte(`[{"id": ` + c.raw + `, "name": "x"}]`))
		require.NoError(t, err, "id=%s", c.raw)
		require.Len(t, got, 1)
		assert.Equal(t, c.want, got[0].ID, "id=%s", c.raw)
	}
}

func TestYAML_IDDisplay(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.RecipeID
	}{
		{`m-2`, "m-2"},
		{`"007"`, "007"},
		{`7`, "7"},
		{`0x1F`, "31"},
		{`1.50`, "1.5"},
		{`1e2`, "100.0"},
		{`.inf`, "inf"},
		{`true`, "True"},
		{`~`, "None"},
		{`null`, "None"},
	}
	for _, c := range cases {
		got, err := YAML{}.Decode([]byte("- id: " + c.raw + "\n  name: x\n"))
		require.NoError(t, err, "id=%s", c.raw)
		require.Len(t, got, 1)
		assert.Equal(t, c.want, got[0].ID, "id=%s", c.raw)
	}
}

func TestJSON_KeysAreCaseSensitive(t *testing.T) {
	got, err := JSON{}.Decode([]byte(`[{"id": 1, "name": "x", "MAINLIQUOR": ["gin"], "Ingredients": ["2 oz gin"]}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{}, got[0].MainLiquor)
	assert.Equal(t, []string{}, got[0].Ingredients)
}

func TestLoad_OptionalListsDefaultToEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "recipes.json")
	writeFile(t, p, `[{"id": 1, "name": "x", "ingredients": null}]`)

	got, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Ingredients)
	assert.Empty(t, got[0].Ingredients)
	assert.NotNil(t, got[0].MainLiquor)
	assert.Empty(t, got[0].MainLiquor)
}

func TestLoad_DirectoryStableOrderAndExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "more.json"), `[{"id": "b1", "name": "B"}]`)
	writeFile(t, filepath.Join(root, "a.yaml"), "- {id: a1, name: A}\n")
	writeFile(t, filepath.Join(root, "drafts", "x.json"), `[{"id": "d1", "name": "Draft"}]`)
	writeFile(t, filepath.Join(root, ".git", "x.json"), `not json`)
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")

	got, err := Load(context.Background(), root, Options{ExcludeDirs: []string{"drafts"}})
	require.NoError(t, err)

	ids := make([]domain.RecipeID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []domain.RecipeID{"a1", "b1"}, ids)

	got, err = Load(context.Background(), root, Options{Format: "json", ExcludeDirs: []string{"drafts"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RecipeID("b1"), got[0].ID)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), Options{})
	assert.Equal(t, ErrCodeNotFound, Code(err))
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/recipes.json", "/export":
			_, _ = w.Write([]byte(recipesJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, err := Load(context.Background(), srv.URL+"/data/recipes.json", Options{Client: srv.Client()})
	require.NoError(t, err)
	if diff := cmp.Diff(wantRecipes(), got); diff != "" {
		t.Fatalf("URL 解码结果不符合预期 (-want +got):\n%s", diff)
	}

	// 无扩展名时默认按 json 解码。
	got, err = Load(context.Background(), srv.URL+"/export", Options{Client: srv.Client()})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = Load(context.Background(), srv.URL+"/missing.json", Options{Client: srv.Client()})
	assert.Equal(t, ErrCodeFetchFailed, Code(err))
	var se *HTTPStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestHTML_NoCards(t *testing.T) {
	_, err := HTML{}.Decode([]byte(`<html><body><p>nothing</p></body></html>`))
	assert.Error(t, err)
}

func TestHTML_CardWithoutName(t *testing.T) {
	_, err := HTML{}.Decode([]byte(`<article class="recipe-card" data-recipe-id="1"><ul><li>2 oz gin</li></ul></article>`))
	var re *RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0, re.Index)
	assert.True(t, errors.Is(err, errMissingName))
}

func TestHTML_NestedRecipeIDIsNotACard(t *testing.T) {
	got, err := HTML{}.Decode([]byte(`<div>
  <article class="recipe-card" data-recipe-id="1" data-main-liquor="gin">
    <h3>Gimlet</h3>
    <button class="fav" data-recipe-id="1">♥</button>
    <ul><li>2 oz gin</li></ul>
  </article>
  <div data-recipe-id="2"><h3>Sidecar</h3><span data-recipe-id="2"></span></div>
</div>`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.RecipeID("1"), got[0].ID)
	assert.Equal(t, domain.RecipeID("2"), got[1].ID)
}

func TestHTML_PassthroughFields(t *testing.T) {
	got, err := HTML{}.Decode([]byte(`<article class="recipe-card" data-recipe-id="7" data-flavor="citrus, sour">
  <img src="./assets/gimlet.jpg"><h3>Gimlet</h3>
  <ul><li>2 oz gin</li><li>0.75 oz lime cordial</li></ul>
  <ol><li>Shake.</li><li>Strain.</li></ol>
</article>`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"citrus", "sour"}, got[0].Flavor)
	assert.Equal(t, "./assets/gimlet.jpg", got[0].Image)
	assert.Equal(t, []string{"Shake.", "Strain."}, got[0].Instructions)
	assert.Equal(t, []string{}, got[0].MainLiquor)
}

func TestRegistry_Duplicates(t *testing.T) {
	_, err := NewRegistry(JSON{}, JSON{})
	assert.Error(t, err)

	r := DefaultRegistry()
	assert.Equal(t, []string{"html", "json", "yaml"}, r.Names())
	l, ok := r.ForExt(".YML")
	require.True(t, ok)
	assert.Equal(t, "yaml", l.Name())
}
