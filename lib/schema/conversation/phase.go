// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package conversation

// Triage statuses assigned by operators and the classifier. These are
// the values the PATCH endpoint accepts for the status field.
const (
	StatusPending           = "pending"
	StatusInProgress        = "in_progress"
	StatusCompleted         = "completed"
	StatusRequiresAttention = "requires_attention"
	StatusSpam              = "spam"
)

// Chatbot flow states. The conversation's status field carries these
// while the chatbot state machine is driving the conversation, before
// an operator or the classifier assigns a triage status. The dashboard
// only displays them; it never writes them.
const (
	FlowInicio                  = "inicio"
	FlowMenuPrincipal           = "menu_principal"
	FlowAguardandoCPF           = "aguardando_cpf"
	FlowEscolhendoData          = "escolhendo_data"
	FlowEscolhendoHorario       = "escolhendo_horario"
	FlowConfirmandoAgendamento  = "confirmando_agendamento"
	FlowVisualizandoAgendamento = "visualizando_agendamentos"
	FlowCancelandoConsulta      = "cancelando_consulta"
	FlowListaEspera             = "lista_espera"
)

// PhaseKind distinguishes which enum a conversation's status value
// belongs to.
type PhaseKind int

const (
	// PhaseTriage is an operator-facing triage status.
	PhaseTriage PhaseKind = iota

	// PhaseFlow is a chatbot state-machine position.
	PhaseFlow

	// PhaseUnknown is a server-introduced value this build does not
	// recognize. Display code must render it, never reject it.
	PhaseUnknown
)

// Phase is the decoded form of a conversation's status field. The
// server mixes two enums (triage status and chatbot flow state) in one
// field, and may introduce new members at any time, so the decoded
// form keeps the raw value and tags which family it belongs to rather
// than switching exhaustively.
type Phase struct {
	Kind PhaseKind

	// Raw is the wire value, preserved verbatim for display and for
	// writing back.
	Raw string
}

// triageLabels maps triage statuses to operator-facing labels. The
// clinic staff works in Portuguese; labels match the original web
// dashboard.
var triageLabels = map[string]string{
	StatusPending:           "Pendente",
	StatusInProgress:        "Em Atendimento",
	StatusCompleted:         "Finalizada",
	StatusRequiresAttention: "Atenção",
	StatusSpam:              "Spam",
}

// flowLabels maps chatbot flow states to short display labels.
var flowLabels = map[string]string{
	FlowInicio:                  "Início",
	FlowMenuPrincipal:           "Menu",
	FlowAguardandoCPF:           "CPF",
	FlowEscolhendoData:          "Data",
	FlowEscolhendoHorario:       "Horário",
	FlowConfirmandoAgendamento:  "Confirmar",
	FlowVisualizandoAgendamento: "Visualizar",
	FlowCancelandoConsulta:      "Cancelar",
	FlowListaEspera:             "Lista Espera",
}

// ParsePhase classifies a raw status value. Unrecognized values are
// tagged PhaseUnknown with the raw value preserved — never an error,
// so a server-side enum addition cannot break the dashboard.
func ParsePhase(raw string) Phase {
	if _, ok := triageLabels[raw]; ok {
		return Phase{Kind: PhaseTriage, Raw: raw}
	}
	if _, ok := flowLabels[raw]; ok {
		return Phase{Kind: PhaseFlow, Raw: raw}
	}
	return Phase{Kind: PhaseUnknown, Raw: raw}
}

// Label returns the operator-facing label for the phase. Unknown
// values fall back to the raw value itself, or "Desconhecido" when
// the field is empty.
func (p Phase) Label() string {
	switch p.Kind {
	case PhaseTriage:
		return triageLabels[p.Raw]
	case PhaseFlow:
		return flowLabels[p.Raw]
	default:
		if p.Raw == "" {
			return "Desconhecido"
		}
		return p.Raw
	}
}

// ValidStatus reports whether value is a recognized triage status —
// one the PATCH endpoint accepts. Flow states are not settable by
// operators and return false.
func ValidStatus(value string) bool {
	_, ok := triageLabels[value]
	return ok
}

// Statuses returns the recognized triage statuses in display order.
// Used by the status filter and the status dropdown.
func Statuses() []string {
	return []string{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusRequiresAttention,
		StatusSpam,
	}
}
