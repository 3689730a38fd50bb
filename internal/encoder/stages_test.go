package encoder

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/encoder/encodertest"
	"github.com/backmassage/texbuild/internal/logging"
)

func testCommand() Command {
	return Command{
		Args: []string{"encode", "-f", "bc5", "-type", "2d", "-i", "/src/a-n.png", "-o", "/dst/a-n.ktx"},
		Src:  "/src/a-n.png",
		Dest: "/dst/a-n.ktx",
	}
}

func fullStages() Stages {
	return Stages{Encoder: "kram", Repackage: "ktx2ktx2", Supercompress: "ktxsc", Verify: "ktx2check"}
}

func TestPipeline_EncodeOnly(t *testing.T) {
	r := &encodertest.Runner{}
	p := &Pipeline{Runner: r, Stages: Stages{Encoder: "kram"}}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Equal(t, []string{"kram encode -f bc5 -type 2d -i /src/a-n.png -o /dst/a-n.ktx"}, r.Lines())
}

func TestPipeline_FullChainOrder(t *testing.T) {
	r := &encodertest.Runner{}
	p := &Pipeline{Runner: r, Stages: fullStages()}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Equal(t, []string{
		"kram encode -f bc5 -type 2d -i /src/a-n.png -o /dst/a-n.ktx",
		"ktx2ktx2 -f -o /dst/a-n.ktx2 /dst/a-n.ktx",
		"ktx2check -q /dst/a-n.ktx2",
		"ktxsc --zcmp 3 --threads 1 /dst/a-n.ktx2",
		"ktx2check -q /dst/a-n.ktx2",
	}, r.Lines())
}

func TestPipeline_Uastc(t *testing.T) {
	r := &encodertest.Runner{}
	s := fullStages()
	s.Verify = ""
	s.Uastc = true
	p := &Pipeline{Runner: r, Stages: s}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Equal(t, []string{
		"kram encode -f bc5 -type 2d -i /src/a-n.png -o /dst/a-n.ktx",
		"ktx2ktx2 -f -o /dst/a-n.ktx2 /dst/a-n.ktx",
		"ktxsc --uastc 2 --uastc_rdo_q 1.0 --threads 1 /dst/a-n.ktx2",
	}, r.Lines())
}

func TestPipeline_VerifyNeedsRepackage(t *testing.T) {
	r := &encodertest.Runner{}
	p := &Pipeline{Runner: r, Stages: Stages{Encoder: "kram", Verify: "ktx2check", Supercompress: "ktxsc"}}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Len(t, r.Calls(), 1)
}

func TestPipeline_VerifiesTwiceWithoutSupercompress(t *testing.T) {
	r := &encodertest.Runner{}
	s := fullStages()
	s.Supercompress = ""
	p := &Pipeline{Runner: r, Stages: s}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Equal(t, []string{
		"kram encode -f bc5 -type 2d -i /src/a-n.png -o /dst/a-n.ktx",
		"ktx2ktx2 -f -o /dst/a-n.ktx2 /dst/a-n.ktx",
		"ktx2check -q /dst/a-n.ktx2",
		"ktx2check -q /dst/a-n.ktx2",
	}, r.Lines())
}

func TestPipeline_ShortCircuits(t *testing.T) {
	tests := []struct {
		name      string
		failOn    string
		wantStage Stage
		wantCalls int
	}{
		{"encode fails", "kram encode", StageEncode, 1},
		{"repackage fails", "ktx2ktx2", StageRepackage, 2},
		{"first verify fails", "ktx2check", StageVerify, 3},
		{"supercompress fails", "ktxsc", StageSupercompress, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &encodertest.Runner{FailOn: []string{tt.failOn}}
			p := &Pipeline{Runner: r, Stages: fullStages()}

			err := p.Run(context.Background(), testCommand())
			var se *StageError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.wantStage, se.Stage)
			assert.ErrorIs(t, err, encodertest.ErrFailed)
			assert.Len(t, r.Calls(), tt.wantCalls)
			assert.Contains(t, se.Error(), tt.failOn)
		})
	}
}

func TestPipeline_ReportsSlowEncodes(t *testing.T) {
	var out bytes.Buffer
	r := &encodertest.Runner{Delay: 20 * time.Millisecond}
	p := &Pipeline{Runner: r, Stages: Stages{Encoder: "kram"}, SlowThreshold: time.Millisecond, Log: logging.New(&out, &out, false)}

	require.NoError(t, p.Run(context.Background(), testCommand()))
	assert.Contains(t, out.String(), "perf: encode a-n.ktx took ")
}

func TestStagesFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, Stages{Encoder: "kram"}, StagesFromConfig(&cfg))

	cfg.KTX2 = true
	s := StagesFromConfig(&cfg)
	assert.Equal(t, "ktx2ktx2", s.Repackage)
	assert.Equal(t, "ktxsc", s.Supercompress)
	assert.Empty(t, s.Verify)

	cfg.CheckKTX2 = true
	cfg.Uastc = true
	s = StagesFromConfig(&cfg)
	assert.Equal(t, "ktx2check", s.Verify)
	assert.True(t, s.Uastc)
}

func TestStages_Output(t *testing.T) {
	cmd := testCommand()
	assert.Equal(t, "/dst/a-n.ktx", Stages{Encoder: "kram"}.Output(cmd))
	assert.Equal(t, "/dst/a-n.ktx2", fullStages().Output(cmd))
}
