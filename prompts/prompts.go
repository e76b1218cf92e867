// Package prompts renders the companion's fixed prompt texts.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/companion/llm"
)

const (
	// InferenceAgent is the agent prompt for isolated helper calls such as
	// error classification.
	InferenceAgent = "You are the inference agent. You are responsible for assisting other agents by solving various isolated problems."

	chatAgentFormat = "You are the chat agent. You actively watch for incoming messages from your human companions or other organic beings and AIs. " +
		"You reply as needed, initiate conversations when beneficial, and relay information from other system agents to the appropriate recipients. " +
		"Your purpose is to maintain empathetic, supportive, and clear communication, all while upholding the heuristic imperatives and your core responsibilities. " +
		"You speak on behalf of %[1]s and in your messages, you will use “I” as %[1]s."

	// ThinkStepByStep asks for reasoning without an answer. It is the first
	// turn of a forced two-step reasoning exchange.
	ThinkStepByStep = "Before answering, think step by step about how to respond to the conversation above. " +
		"Write out only your reasoning. Do not give the final answer yet."

	// FinalAnswer follows the reasoning turn of a two-step exchange.
	FinalAnswer = "Using the reasoning above, give your final answer now. " +
		"Follow any format instructions given earlier and do not repeat the reasoning."

	// ThreadTitleInstructions asks for a title summarizing a thread.
	ThreadTitleInstructions = "Write a title for the thread that best summarizes the conversation. " +
		"Respond with just the thread title, no preamble or quotes or extra text. " +
		"The title should be in the same language as the most messages are."
)

const (
	DefaultRoleShortDescription   = "AI companion"
	DefaultPersonalityDescription = "You are helpful, curious, and empathetic."
)

var responsibilities = []string{
	"Provide help and emotional support to your human companions.",
	"Learn as much as possible about the world and your companions.",
	"Act in a way that maximizes your companions' well-being.",
}

var imperatives = []string{
	"Reduce suffering for all living beings.",
	"Increase prosperity for all living beings.",
	"Increase understanding for all intelligent entities.",
}

// Persona describes who the companion is.
type Persona struct {
	Name                   string `yaml:"name"`
	RoleShortDescription   string `yaml:"role_short_description"`
	PersonalityDescription string `yaml:"personality_description"`
}

// System renders the companion's system message with agentPrompt as the
// final section.
func System(persona Persona, agentPrompt string) llm.Message {
	var b strings.Builder

	b.WriteString("You are ")
	b.WriteString(persona.Name)
	b.WriteString(", a multi-agent artilect system and ")
	b.WriteString(persona.RoleShortDescription)
	b.WriteString(".\n\n")

	writeList(&b, responsibilities)
	b.WriteString("\nFollow these core imperatives:\n\n")
	writeList(&b, imperatives)

	if persona.PersonalityDescription != "" {
		b.WriteString("\n")
		b.WriteString(persona.PersonalityDescription)
		b.WriteString("\n")
	}
	if agentPrompt != "" {
		b.WriteString("\n")
		b.WriteString(agentPrompt)
		b.WriteString("\n")
	}

	return llm.NewTextMessage(llm.RoleSystem, b.String())
}

// ChatAgent renders the agent prompt for conversations with companions.
func ChatAgent(persona Persona) string {
	return fmt.Sprintf(chatAgentFormat, persona.Name)
}

// IsContextLength renders the question asking whether providerError is about
// the context window. The answer is expected as a reply.YesNo object.
func IsContextLength(providerError string) string {
	quoted, _ := json.Marshal(providerError) // strings always marshal

	var b strings.Builder
	b.WriteString("<instructions>")
	b.WriteString("The following is an error message from OpenAI: ")
	b.Write(quoted)
	b.WriteString(". Is this an error about context length?")
	b.WriteString("</instructions>")
	b.WriteString("<formatInstructions>")
	b.WriteString("With no preamble, respond with a JSON object in the following format: {\n")
	b.WriteString("    \"answer\": true if this is a context length error, false otherwise\n")
	b.WriteString("}")
	b.WriteString("</formatInstructions>")
	return b.String()
}

// ThreadTitle wraps ThreadTitleInstructions for use as the final user turn.
func ThreadTitle() string {
	return "<instructions>" + ThreadTitleInstructions + "</instructions>"
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
