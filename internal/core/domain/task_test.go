package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/core/domain"
)

func TestTaskName(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{name: "lambda basename", parts: []string{"zipLambda", "post_cron_webhook"}, want: "zipLambdaPostCronWebhook"},
		{name: "dashes", parts: []string{"zipLambda-my-handler"}, want: "zipLambdaMyHandler"},
		{name: "preserves inner capitals", parts: []string{"yarn", "hxTerraform"}, want: "yarnHxTerraform"},
		{name: "lowers first rune", parts: []string{"Generate"}, want: "generate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.TaskName(tt.parts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskName_Invalid(t *testing.T) {
	_, err := domain.TaskName("--")
	require.ErrorIs(t, err, domain.ErrInvalidTaskName)

	_, err = domain.TaskName("9lives")
	require.ErrorIs(t, err, domain.ErrInvalidTaskName)
}

func TestNewTask(t *testing.T) {
	task, err := domain.NewTask("plan", nil,
		domain.WithDescription("write a plan"),
		domain.WithDeps(domain.OnTask("init"), domain.OnFile("/p/main.tf")),
		domain.WithTargets("/p/tfplan"),
		domain.AlwaysRun(),
	)
	require.NoError(t, err)

	assert.Equal(t, domain.Alias{}, task.Action)
	assert.Equal(t, domain.PolicyAlwaysRun, task.Policy)
	assert.Equal(t, "always", task.Policy.String())
	require.Len(t, task.TaskDeps(), 1)
	assert.Equal(t, "init", task.TaskDeps()[0].String())
	require.Len(t, task.FileDeps(), 1)
	assert.Equal(t, "/p/main.tf", task.FileDeps()[0].String())

	_, err = domain.NewTask("bad name", nil)
	require.ErrorIs(t, err, domain.ErrInvalidTaskName)

	_, err = domain.NewTask("twice", nil, domain.WithTargets("/p/a", "/p/a"))
	require.ErrorIs(t, err, domain.ErrDuplicateTarget)
}

func TestGroup_Add(t *testing.T) {
	g := domain.NewGroup("yarn")
	_, err := g.AddNew("yarnLocal", nil, domain.WithTargets("/p/x"))
	require.NoError(t, err)

	_, err = g.AddNew("yarnLocal", nil)
	require.ErrorIs(t, err, domain.ErrDuplicateTaskName)

	_, err = g.AddNew("other", nil, domain.WithTargets("/p/x"))
	require.ErrorIs(t, err, domain.ErrDuplicateTarget)

	assert.Equal(t, 1, g.Len())
	_, ok := g.Get("yarnLocal")
	assert.True(t, ok)
}

func TestTrack(t *testing.T) {
	assert.Equal(t, domain.Track("/p/a/../b"), domain.Track("/p/b"))
	sorted := domain.SortTracked(domain.TrackAll("/b", "/a", "/b"))
	assert.Equal(t, domain.TrackAll("/a", "/b"), sorted)
}

func TestInternedString(t *testing.T) {
	var zero domain.InternedString
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())

	a := domain.NewInternedString("a")
	b := domain.NewInternedString("b")
	assert.Negative(t, a.Compare(b))
	assert.Equal(t, a, domain.NewInternedString("a"))

	text, err := a.MarshalText()
	require.NoError(t, err)
	var back domain.InternedString
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, a, back)
}
