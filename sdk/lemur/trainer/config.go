package trainer

// LoRAConfig carries the adapter settings submitted with a tuning job.
type LoRAConfig struct {
	R             int      `json:"r"`
	Alpha         int      `json:"lora_alpha"`
	Dropout       float64  `json:"lora_dropout"`
	TargetModules []string `json:"target_modules"`
	Bias          string   `json:"bias"`
	TaskType      string   `json:"task_type"`
}

// Arguments carries the training loop settings submitted with a tuning job.
type Arguments struct {
	NumTrainEpochs              int     `json:"num_train_epochs"`
	WarmupSteps                 int     `json:"warmup_steps"`
	LRSchedulerType             string  `json:"lr_scheduler_type"`
	LearningRate                float64 `json:"learning_rate"`
	PerDeviceTrainBatchSize     int     `json:"per_device_train_batch_size"`
	GradientAccumulationSteps   int     `json:"gradient_accumulation_steps"`
	FP16                        bool    `json:"fp16"`
	MaxGradNorm                 float64 `json:"max_grad_norm"`
	WeightDecay                 float64 `json:"weight_decay"`
	EvalStrategy                string  `json:"eval_strategy"`
	SaveStrategy                string  `json:"save_strategy"`
	SaveTotalLimit              int     `json:"save_total_limit"`
	LoadBestModelAtEnd          bool    `json:"load_best_model_at_end"`
	EarlyStoppingPatience       int     `json:"early_stopping_patience"`
	LoggingSteps                int     `json:"logging_steps"`
	OptimizeForKBitQuantization bool    `json:"prepare_model_for_kbit_training"`
	LoadIn8Bit                  bool    `json:"load_in_8bit"`
}

// TokenizerConfig carries the tokenizer settings the training side applies
// so padding during training matches what generation expects.
type TokenizerConfig struct {
	AddEOSToken bool   `json:"add_eos_token"`
	PadTokenID  int    `json:"pad_token_id"`
	PaddingSide string `json:"padding_side"`
}

// DefaultLoRA returns the adapter settings every tuning run uses.
func DefaultLoRA() LoRAConfig {
	return LoRAConfig{
		R:             32,
		Alpha:         32,
		Dropout:       0.05,
		TargetModules: []string{"q_proj", "k_proj", "v_proj", "o_proj"},
		Bias:          "none",
		TaskType:      "CAUSAL_LM",
	}
}

// DefaultArguments returns the training loop settings every tuning run uses.
func DefaultArguments() Arguments {
	return Arguments{
		NumTrainEpochs:              35,
		WarmupSteps:                 100,
		LRSchedulerType:             "cosine",
		LearningRate:                1e-5,
		PerDeviceTrainBatchSize:     1,
		GradientAccumulationSteps:   8,
		FP16:                        true,
		MaxGradNorm:                 1.0,
		WeightDecay:                 0.01,
		EvalStrategy:                "epoch",
		SaveStrategy:                "epoch",
		SaveTotalLimit:              3,
		LoadBestModelAtEnd:          true,
		EarlyStoppingPatience:       2,
		LoggingSteps:                10,
		OptimizeForKBitQuantization: true,
		LoadIn8Bit:                  true,
	}
}

// DefaultTokenizer returns the tokenizer settings every tuning run uses.
func DefaultTokenizer() TokenizerConfig {
	return TokenizerConfig{
		AddEOSToken: true,
		PadTokenID:  0,
		PaddingSide: "right",
	}
}
