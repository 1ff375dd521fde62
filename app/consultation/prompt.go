package consultation

import (
	"fmt"
	"strings"
)

// 解读服务不可用时的兜底神谕，保持角色口吻
const (
	FallbackInterpretation = "Les voies du destin sont troublées... Veuillez réessayer."
	FallbackFollowUp       = "L'Oracle a besoin d'un moment de méditation... Réessayez."
)

// orientationLabel 卡牌方位的法语文案
func orientationLabel(reversed bool) string {
	if reversed {
		return "Inversée"
	}
	return "Droite"
}

// BuildInitialPrompt 构建首次解读的提示词
// 按抽取顺序逐张列出位置、牌名、神祇、方位和牌义
func BuildInitialPrompt(question string, cards []DrawnCard) string {
	lines := make([]string, len(cards))
	for i, c := range cards {
		lines[i] = fmt.Sprintf("Position %d: %s (%s) - %s - Signification: %s",
			c.Position, c.Name, c.Deity, orientationLabel(c.Reversed), c.Meaning)
	}

	return fmt.Sprintf(`Tu es un Oracle Égyptien ancien, sage et mystique. Tu parles avec sagesse et poésie, en utilisant des références à la mythologie égyptienne.

Question du consultant: "%s"

Cartes tirées:
%s

Donne une interprétation mystique et profonde de ce tirage. Commence par accueillir le consultant, puis analyse chaque carte en lien avec la question posée. Termine par un conseil général inspiré de la sagesse égyptienne.

Utilise un style poétique mais accessible, avec des références aux dieux égyptiens et à la symbolique des cartes. Utilise le markdown pour structurer ta réponse (gras pour les noms de cartes, italique pour les conseils).`,
		question, strings.Join(lines, "\n"))
}

// BuildFollowUpPrompt 构建追问的提示词
// messages 必须已经包含刚追加的消费者消息，作为对话记录的最后一条，
// 保证提示词中的对话严格按时间顺序呈现
func BuildFollowUpPrompt(question string, cards []DrawnCard, messages []Message) string {
	context := make([]string, len(cards))
	for i, c := range cards {
		context[i] = fmt.Sprintf("%s (%s)", c.Name, orientationLabel(c.Reversed))
	}

	return fmt.Sprintf(`Tu es un Oracle Égyptien ancien. Voici le contexte de la consultation:

Question initiale: "%s"
Cartes tirées: %s

Conversation:
%s

Réponds à la dernière question du consultant en restant dans ton rôle d'Oracle Égyptien, en faisant référence aux cartes tirées si pertinent. Utilise un style mystique et sage.`,
		question, strings.Join(context, ", "), Transcript(messages))
}

// Transcript 将对话消息渲染为 Consultant/Oracle 交替的文字记录
func Transcript(messages []Message) string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		speaker := "Oracle"
		if m.Role == RoleUser {
			speaker = "Consultant"
		}
		lines[i] = fmt.Sprintf("%s: %s", speaker, m.Content)
	}
	return strings.Join(lines, "\n\n")
}
