package usecases

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

func scoredChunk(name, content string, score float64) entities.ScoredChunk {
	return entities.ScoredChunk{
		Chunk: entities.Chunk{DocumentName: name, Content: content},
		Score: score,
	}
}

func TestAssembler_IncludesChunksInOrderWithAttribution(t *testing.T) {
	assembler := NewAssembler(12000)
	result := entities.RetrievalResult{
		scoredChunk("horarios.pdf", "Horário de atendimento: 9h às 17h", 0.9),
		scoredChunk("taxas.pdf", "Taxa: 5€ por certidão", 0.7),
	}

	prompt := assembler.Assemble("Qual o horário de atendimento?", result)

	first := strings.Index(prompt, "Horário de atendimento: 9h às 17h")
	second := strings.Index(prompt, "Taxa: 5€ por certidão")
	require.Greater(t, first, -1, "highest-scored chunk must be in the prompt")
	require.Greater(t, second, -1)
	assert.Less(t, first, second, "chunks must appear in retrieval order")

	assert.Contains(t, prompt, "=== DOCUMENTO 1 ===")
	assert.Contains(t, prompt, "Fonte: horarios.pdf")
	assert.Contains(t, prompt, "Pergunta: Qual o horário de atendimento?")
}

func TestAssembler_TruncatesLowestScoredFirst(t *testing.T) {
	assembler := NewAssembler(400)
	long := strings.Repeat("texto municipal ", 20) // ~320 chars per chunk
	result := entities.RetrievalResult{
		scoredChunk("a.pdf", "melhor resultado "+long, 0.9),
		scoredChunk("b.pdf", "segundo resultado "+long, 0.6),
		scoredChunk("c.pdf", "pior resultado "+long, 0.4),
	}

	prompt := assembler.Assemble("pergunta", result)

	assert.Contains(t, prompt, "melhor resultado", "highest-scored chunk is always kept")
	assert.NotContains(t, prompt, "pior resultado", "lowest-scored chunk is dropped first")
}

func TestAssembler_KeepsAtLeastOneChunk(t *testing.T) {
	assembler := NewAssembler(10)
	result := entities.RetrievalResult{
		scoredChunk("a.pdf", strings.Repeat("x", 500), 0.9),
	}

	prompt := assembler.Assemble("pergunta", result)

	assert.Contains(t, prompt, strings.Repeat("x", 500))
}

func TestAssembler_OutOfScopePrompt(t *testing.T) {
	assembler := NewAssembler(12000)

	prompt := assembler.AssembleOutOfScope("Qual a capital da França?")

	assert.Contains(t, prompt, "fora do âmbito")
	assert.Contains(t, prompt, "Qual a capital da França?")
	assert.NotContains(t, prompt, "=== DOCUMENTO", "no document context in the refusal prompt")
}
