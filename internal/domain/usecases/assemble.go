package usecases

import (
	"fmt"
	"strings"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

const systemInstructions = `Você é um assistente virtual especializado em responder perguntas sobre documentos e serviços municipais.

IMPORTANTE:
1. Responda apenas com base nos documentos fornecidos no contexto.
2. Forneça um resumo detalhado e completo das informações encontradas, incluindo datas, números, prazos e taxas quando disponíveis.
3. Se houver múltiplos documentos com informações complementares, integre essas informações numa resposta coesa.`

const outOfScopeInstructions = `Você é um assistente virtual especializado em responder perguntas sobre documentos e serviços municipais.

A pergunta abaixo não está relacionada com os documentos carregados no sistema. Responda educadamente que a pergunta está fora do âmbito dos documentos disponíveis e que só pode ajudar com questões sobre os serviços e documentos municipais carregados. Não tente responder à pergunta.`

// Assembler formats retrieved chunks plus the question into a bounded
// prompt for the language model.
type Assembler struct {
	maxContextChars int
}

// NewAssembler creates an Assembler with the given context budget in
// characters.
func NewAssembler(maxContextChars int) *Assembler {
	if maxContextChars <= 0 {
		maxContextChars = 12000
	}
	return &Assembler{maxContextChars: maxContextChars}
}

// Assemble builds the prompt from the retrieval result, in result order,
// with source attribution. When the formatted context exceeds the budget,
// the lowest-scored chunks are dropped first; at least one chunk is
// always kept.
func (a *Assembler) Assemble(question string, result entities.RetrievalResult) string {
	kept := result
	context := formatContext(kept)
	for len(context) > a.maxContextChars && len(kept) > 1 {
		kept = kept[:len(kept)-1]
		context = formatContext(kept)
	}

	var sb strings.Builder
	sb.WriteString(systemInstructions)
	sb.WriteString("\n\nContexto dos documentos disponíveis:\n")
	sb.WriteString(context)
	sb.WriteString("\nPergunta: ")
	sb.WriteString(question)
	sb.WriteString("\n\nResposta detalhada:")
	return sb.String()
}

// AssembleOutOfScope builds the prompt used when retrieval found no
// relevant context. The refusal is enforced here, in the prompt, not
// left to model discretion.
func (a *Assembler) AssembleOutOfScope(question string) string {
	var sb strings.Builder
	sb.WriteString(outOfScopeInstructions)
	sb.WriteString("\n\nPergunta: ")
	sb.WriteString(question)
	sb.WriteString("\n\nResposta:")
	return sb.String()
}

// formatContext renders the retrieved chunks as attributed document blocks.
func formatContext(result entities.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString("Documentos relevantes encontrados:\n\n")
	for i, res := range result {
		sb.WriteString(fmt.Sprintf("=== DOCUMENTO %d ===\n", i+1))
		sb.WriteString(fmt.Sprintf("Fonte: %s\n", res.Chunk.DocumentName))
		sb.WriteString("Conteúdo:\n")
		sb.WriteString(res.Chunk.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
