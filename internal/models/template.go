package models

import "time"

// DefaultProposal возвращает шаблон новой записи. Дата берётся на момент вызова.
func DefaultProposal(now time.Time) Proposal {
	return Proposal{
		FieldID:                      "",
		FieldCliente:                 "TREZE INCORPORADORA",
		FieldData:                    now.Format(DateLayout),
		FieldPlano:                   "Prime",
		"negociacoes":                "2.000",
		"usuarios":                   "5",
		"whatsapp":                   "1",
		"roi":                        "R$ 50.000",
		"pacoteAdicional":            "R$ 200",
		"whatsappAdicional":          "R$ 350",
		"garantiaMinimo":             "50",
		"garantiaVolume":             "R$ 1 milhões",
		"garantiaRoi":                "5 vezes",
		"garantiaTempo":              "60",
		"ofertaValidade":             "30/09/2025",
		"implantacao":                "R$ 10.000",
		"implantacaoDesconto":        "R$ 5.000",
		"precoInicial":               "R$ 2.000",
		"precoPlano":                 "R$ 4.000",
		"integracoes":                "SIENGE",
		"mostrarOfertaFeira":         true,
		"mostrarDesconto":            true,
		"mostrarDescontoImplantacao": true,
		"mostrarIntegracoes":         true,
		"semFidelidade":              true,
		"textoFidelidade":            "Após a implantação, não há período de fidelidade.",
		"validade":                   "30/09/2025",
		"contato":                    "rodrigo@dgenny.com.br",
	}
}
