// Package model defines the column contract, run records, and warnings shared
// across the ingest, reconcile, and report stages.
package model

// Membership columns as published by the Câmara open-data extracts.
const (
	ColTerm            = "legislatura"
	ColBodyURI         = "uriOrgao"
	ColBodyAcronym     = "siglaOrgao"
	ColBodyName        = "nomeOrgao"
	ColBodyPublication = "nomePublicacaoOrgao"
	ColLegislatorURI   = "uriDeputado"
	ColLegislatorName  = "nomeDeputado"
	ColLegislatorSex   = "sexoDeputado"
	ColParty           = "siglaPartido"
	ColState           = "siglaUF"
	ColRole            = "cargo"
	ColStart           = "dataInicio"
	ColEnd             = "dataFim"
)

// Roster columns.
const (
	RosterColURI        = "uri"
	RosterColBirthState = "ufNascimento"
	RosterColSex        = "siglaSexo"
)

// CanonicalColumns are guaranteed to exist after reconciliation, whatever the
// inputs contributed. The sex attribute is handled by enrichment.
var CanonicalColumns = []string{
	ColBodyURI,
	ColBodyAcronym,
	ColBodyName,
	ColBodyPublication,
	ColLegislatorURI,
	ColLegislatorName,
	ColParty,
	ColState,
	ColRole,
	ColStart,
	ColEnd,
	ColTerm,
}

// OutputOrder is the leading column sequence of the cleaned dataset.
var OutputOrder = []string{
	ColTerm,
	ColBodyURI,
	ColBodyAcronym,
	ColBodyName,
	ColBodyPublication,
	ColLegislatorURI,
	ColLegislatorName,
	ColLegislatorSex,
	ColParty,
	ColState,
	ColRole,
	ColStart,
	ColEnd,
}
