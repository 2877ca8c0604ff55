package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillsShapesNormalizeToSameSet(t *testing.T) {
	fromList := ParseVariant([]byte(`["Docker","AWS"]`))
	fromMap := ParseVariant([]byte(`{"Docker": true, "AWS": true}`))
	fromText := ParseVariant([]byte(`"Docker, AWS"`))

	assert.Equal(t, KindList, fromList.Kind)
	assert.Equal(t, KindMap, fromMap.Kind)
	assert.Equal(t, KindText, fromText.Kind)

	want := []string{"Docker", "AWS"}
	assert.ElementsMatch(t, want, fromList.Skills())
	assert.ElementsMatch(t, want, fromMap.Skills())
	assert.ElementsMatch(t, want, fromText.Skills())
}

func TestSkillsIsIdempotentOverItsOwnOutput(t *testing.T) {
	first := ParseVariant([]byte(`{"Docker": true, "AWS": true}`)).Skills()
	again := ParseVariant(mustJSON(t, first)).Skills()
	assert.Equal(t, first, again)
}

func TestSkillsMapSkipsFalseAndNull(t *testing.T) {
	v := ParseVariant([]byte(`{"Docker": true, "Go": false, "AWS": null, "Kubernetes": "critical"}`))
	assert.Equal(t, []string{"Docker", "Kubernetes"}, v.Skills())
}

func TestSkillsDeduplicatesCaseInsensitively(t *testing.T) {
	v := ParseVariant([]byte(`["Docker", "docker", " AWS ", ""]`))
	assert.Equal(t, []string{"Docker", "AWS"}, v.Skills())
}

func TestEmptyShapes(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `{}`, `""`, `"   "`} {
		v := ParseVariant([]byte(raw))
		assert.Equal(t, KindEmpty, v.Kind, raw)
		assert.Empty(t, v.Skills(), raw)
		assert.Empty(t, v.Lines(), raw)
	}
}

func TestLinesFromEveryShape(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want []string
	}{
		"text":      {`"Strong foundation\n- Needs cloud exposure\n\n"`, []string{"Strong foundation", "Needs cloud exposure"}},
		"list":      {`["Strong foundation","Needs cloud exposure"]`, []string{"Strong foundation", "Needs cloud exposure"}},
		"map":       {`{"strengths":"Strong foundation","gaps":"Needs cloud exposure"}`, []string{"Strong foundation", "Needs cloud exposure"}},
		"flag map":  {`{"Join meetups": true, "Skip": false}`, []string{"Join meetups"}},
		"objects":   {`[{"title":"Quantify impact","explanation":"Add numbers"}]`, []string{"Quantify impact: Add numbers"}},
		"raw text":  {`not json at all`, []string{"not json at all"}},
		"number ok": {`[1, "two"]`, []string{"1", "two"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseVariant([]byte(tc.raw)).Lines())
		})
	}
}

func TestMapPreservesStoredOrder(t *testing.T) {
	v := ParseVariant([]byte(`{"zeta":"last written first","alpha":"second"}`))
	assert.Equal(t, []string{"last written first", "second"}, v.Lines())
}
