package post

// Params is the per-frame output of Mapping.Resolve. It is a plain value; nothing
// keeps a reference to it after Apply.
type Params struct {
	Exposure float32

	BloomIntensity float32
	BloomThreshold float32
	BloomSmoothing float32
	BloomLevels    float32

	AAStrength    float32
	Multisampling float32

	SharpenStrength float32
	GrainIntensity  float32

	ChromaticOffset float32

	VignetteDarkness float32
	VignetteOffset   float32

	// DPR is the tier's device pixel ratio cap. It is not a stage parameter; the
	// DPR smoother consumes it.
	DPR float32
}

type binding struct {
	stage string
	param string
	get   func(*Params) float32
}

// bindings routes every Params field to exactly one stage parameter. The first
// parameter of each stage is its strength.
var bindings = []binding{
	{ToneMapping, "exposure", func(p *Params) float32 { return p.Exposure }},
	{Bloom, "intensity", func(p *Params) float32 { return p.BloomIntensity }},
	{Bloom, "threshold", func(p *Params) float32 { return p.BloomThreshold }},
	{Bloom, "smoothing", func(p *Params) float32 { return p.BloomSmoothing }},
	{Bloom, "levels", func(p *Params) float32 { return p.BloomLevels }},
	{AntiAlias, "strength", func(p *Params) float32 { return p.AAStrength }},
	{AntiAlias, "samples", func(p *Params) float32 { return p.Multisampling }},
	{Sharpen, "strength", func(p *Params) float32 { return p.SharpenStrength }},
	{Grain, "intensity", func(p *Params) float32 { return p.GrainIntensity }},
	{ChromaticAberration, "offset", func(p *Params) float32 { return p.ChromaticOffset }},
	{Vignette, "darkness", func(p *Params) float32 { return p.VignetteDarkness }},
	{Vignette, "offset", func(p *Params) float32 { return p.VignetteOffset }},
}

var stageOrder = []string{ToneMapping, Bloom, AntiAlias, Sharpen, Grain, ChromaticAberration, Vignette}

type slot struct {
	stage *Stage
	index int
	get   func(*Params) float32
}

// Pipeline is the ordered list of post stages. It is built once and its topology
// never changes: a tier that does not want a stage drives its strength to zero.
type Pipeline struct {
	stages  []*Stage
	byName  map[string]*Stage
	slots   []slot
	applied uint64
}

func NewPipeline() *Pipeline {
	p := &Pipeline{byName: make(map[string]*Stage, len(stageOrder))}
	params := make(map[string][]string, len(stageOrder))
	for _, b := range bindings {
		params[b.stage] = append(params[b.stage], b.param)
	}
	for _, name := range stageOrder {
		st := newStage(name, params[name]...)
		p.stages = append(p.stages, st)
		p.byName[name] = st
	}
	for _, b := range bindings {
		st := p.byName[b.stage]
		p.slots = append(p.slots, slot{stage: st, index: st.index(b.param), get: b.get})
	}
	return p
}

// Stages returns the stages in render order. The slice and its elements are the
// same for the lifetime of the pipeline.
func (p *Pipeline) Stages() []*Stage { return p.stages }

func (p *Pipeline) Stage(name string) *Stage { return p.byName[name] }

// Apply writes a resolved parameter set into the stages. It allocates nothing.
func (p *Pipeline) Apply(params Params) {
	for _, s := range p.slots {
		s.stage.set(s.index, s.get(&params))
	}
	p.applied++
}

// Applied counts Apply calls.
func (p *Pipeline) Applied() uint64 { return p.applied }
