package llamacpp

import (
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/hybridgroup/yzma/pkg/llama"
)

const (
	defTopK      = 40
	defTopP      = 0.9
	defMinP      = 0.0
	defMaxTokens = 512
)

func adjustParams(p engine.Params) engine.Params {
	if p.MaxTokens <= 0 {
		p.MaxTokens = defMaxTokens
	}

	// Temperature 0 means greedy decoding, so only the sampling knobs get
	// defaults when sampling is in play.
	if p.Temperature <= 0 {
		p.Temperature = 0
		return p
	}

	if p.TopK <= 0 {
		p.TopK = defTopK
	}

	if p.TopP <= 0 {
		p.TopP = defTopP
	}

	if p.MinP < 0 {
		p.MinP = defMinP
	}

	return p
}

func toSampler(p engine.Params) llama.Sampler {
	sampler := llama.SamplerChainInit(llama.SamplerChainDefaultParams())

	if p.Temperature <= 0 {
		llama.SamplerChainAdd(sampler, llama.SamplerInitGreedy())
		return sampler
	}

	llama.SamplerChainAdd(sampler, llama.SamplerInitTempExt(p.Temperature, 0, 1.0))
	llama.SamplerChainAdd(sampler, llama.SamplerInitTopK(p.TopK))
	llama.SamplerChainAdd(sampler, llama.SamplerInitTopP(p.TopP, 0))
	llama.SamplerChainAdd(sampler, llama.SamplerInitMinP(p.MinP, 0))
	llama.SamplerChainAdd(sampler, llama.SamplerInitDist(llama.DefaultSeed))

	return sampler
}
