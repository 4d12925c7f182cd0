package embed

import (
	"fmt"
	"log"
	"math"
	"os"

	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Model runs a local ONNX embedding model. A process loads one Model at
// startup and reuses it for every job; loading is the expensive part.
type Model struct {
	tokenizer      *tokenizer.Tokenizer
	session        *ort.DynamicAdvancedSession
	maxBatchTokens int
}

const defaultMaxBatchTokens = 6000

// Load initializes the tokenizer and ONNX session. Model files are read
// from the working directory; the runtime library path can be overridden
// with ONNXRUNTIME_LIB.
func Load() (*Model, error) {
	tok, err := pretrained.FromFile("tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	libPath := os.Getenv("ONNXRUNTIME_LIB")
	if libPath == "" {
		libPath = "/usr/local/lib/libonnxruntime.so.1.23.2"
	}
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}

	enableCUDA(opts)

	if err := opts.SetIntraOpNumThreads(0); err != nil {
		log.Printf("Warning: failed to set thread count: %v", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		"model.onnx",
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Model{
		tokenizer:      tok,
		session:        session,
		maxBatchTokens: defaultMaxBatchTokens,
	}, nil
}

// enableCUDA tries GPU 0 and falls back to CPU silently.
func enableCUDA(opts *ort.SessionOptions) {
	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		log.Printf("CUDA not available, using CPU: %v", err)
		return
	}
	defer cudaOpts.Destroy()

	if err := cudaOpts.Update(map[string]string{"device_id": "0"}); err != nil {
		log.Printf("Failed to update CUDA options, using CPU: %v", err)
		return
	}
	if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		log.Printf("Failed to append CUDA provider, using CPU: %v", err)
		return
	}
	log.Println("CUDA execution provider enabled")
}

// CountTokens returns the tokenizer's token count for a text, 0 on error.
func (m *Model) CountTokens(text string) int {
	encoding, err := m.tokenizer.EncodeSingle(text)
	if err != nil {
		return 0
	}
	return len(encoding.GetIds())
}

// EmbedText embeds a single text and L2-normalizes the result, making dot
// products equivalent to cosine similarity against the stored vectors.
func (m *Model) EmbedText(text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return normalize(embeddings[0]), nil
}

// EmbedBatch embeds texts in sub-batches bounded by a total-token budget,
// so one oversized batch cannot exhaust GPU memory.
func (m *Model) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	tokenCounts := make([]int, len(texts))
	for i, t := range texts {
		tokenCounts[i] = m.CountTokens(t)
	}

	all := make([][]float32, 0, len(texts))
	i := 0
	for i < len(texts) {
		var batch []string
		maxSeqLen := 0

		for i < len(texts) {
			seqLen := maxSeqLen
			if tokenCounts[i] > seqLen {
				seqLen = tokenCounts[i]
			}
			// Padded batch cost is rows times the longest row
			if len(batch) > 0 && (len(batch)+1)*seqLen > m.maxBatchTokens {
				break
			}
			batch = append(batch, texts[i])
			maxSeqLen = seqLen
			i++
		}

		embeddings, err := m.runBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("batch failed: %w", err)
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

// runBatch tokenizes, pads, and runs inference for one batch, returning
// the [CLS] embedding of each input.
func (m *Model) runBatch(texts []string) ([][]float32, error) {
	inputs := make([]tokenizer.EncodeInput, len(texts))
	for i, t := range texts {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(t))
	}

	encodings, err := m.tokenizer.EncodeBatch(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	maxLen := 0
	for _, enc := range encodings {
		if l := len(enc.GetIds()); l > maxLen {
			maxLen = l
		}
	}

	batchSize := len(encodings)
	inputIds := make([]int64, batchSize*maxLen)
	attentionMask := make([]int64, batchSize*maxLen)
	tokenTypeIds := make([]int64, batchSize*maxLen)

	for i, enc := range encodings {
		ids := enc.GetIds()
		mask := enc.GetAttentionMask()
		offset := i * maxLen
		for j := 0; j < len(ids); j++ {
			inputIds[offset+j] = int64(ids[j])
			attentionMask[offset+j] = int64(mask[j])
		}
	}

	shape := ort.NewShape(int64(batchSize), int64(maxLen))

	inputIdsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIdsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIdsTensor, err := ort.NewTensor(shape, tokenTypeIds)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	defer tokenTypeIdsTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := m.session.Run(
		[]ort.Value{inputIdsTensor, attentionMaskTensor, tokenTypeIdsTensor},
		outputs,
	); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32 type")
	}

	// Output shape: [batch, sequence, hidden]
	outShape := outputTensor.GetShape()
	seqLen := outShape[1]
	hiddenDim := outShape[2]
	data := outputTensor.GetData()

	// Copy before the tensor is destroyed
	embeddings := make([][]float32, batchSize)
	for i := int64(0); i < int64(batchSize); i++ {
		clsStart := i * seqLen * hiddenDim
		embeddings[i] = make([]float32, hiddenDim)
		copy(embeddings[i], data[clsStart:clsStart+hiddenDim])
	}

	return embeddings, nil
}

func (m *Model) Close() error {
	if m.session != nil {
		m.session.Destroy()
	}
	ort.DestroyEnvironment()
	return nil
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
