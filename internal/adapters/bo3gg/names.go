package bo3gg

import (
	"regexp"
	"strings"
)

// Resolução de nomes de times em ordem explícita de prioridade:
// campos estruturados do provedor > tabela lateral de times > heurística de slug.
// A primeira estratégia que resolver os dois nomes vence.
type nameStrategy struct {
	name    string
	resolve func(m apiMatch) (team1, team2 string)
}

func (a *Adapter) nameStrategies() []nameStrategy {
	return []nameStrategy{
		{name: "structured", resolve: structuredNames},
		{name: "side_table", resolve: a.sideTableNames},
		{name: "slug", resolve: slugNames},
	}
}

// resolveTeamNames aplica as estratégias em ordem; slug é o fallback
// garantido (sempre produz algo, ainda que com perda).
func (a *Adapter) resolveTeamNames(m apiMatch) (string, string) {
	for _, s := range a.nameStrategies() {
		if t1, t2 := s.resolve(m); t1 != "" && t2 != "" {
			return t1, t2
		}
	}
	return "TBD", "TBD"
}

// structuredNames usa os objetos de time embutidos na resposta, quando presentes.
func structuredNames(m apiMatch) (string, string) {
	if m.Team1 == nil || m.Team2 == nil {
		return "", ""
	}
	return strings.TrimSpace(m.Team1.Name), strings.TrimSpace(m.Team2.Name)
}

// sideTableNames resolve os slugs contra a tabela lateral de rankings/aliases.
func (a *Adapter) sideTableNames(m apiMatch) (string, string) {
	s1, s2, ok := splitSlug(m.Slug)
	if !ok {
		return "", ""
	}
	t1, ok1 := a.rankings.CanonicalName(strings.ReplaceAll(s1, "-", " "))
	t2, ok2 := a.rankings.CanonicalName(strings.ReplaceAll(s2, "-", " "))
	if !ok1 || !ok2 {
		return "", ""
	}
	return t1, t2
}

// slugNames é a heurística com perda: só usada quando as estratégias de
// maior prioridade não estão disponíveis.
func slugNames(m apiMatch) (string, string) {
	s1, s2, ok := splitSlug(m.Slug)
	if !ok {
		return "", ""
	}
	return slugToName(s1), slugToName(s2)
}

var dateSuffix = regexp.MustCompile(`-\d{2}-\d{2}-\d{4}$`)

// splitSlug separa "team1-slug-vs-team2-slug-DD-MM-YYYY" nos dois slugs de time.
func splitSlug(slug string) (string, string, bool) {
	if slug == "" {
		return "", "", false
	}
	withoutDate := dateSuffix.ReplaceAllString(slug, "")
	parts := strings.SplitN(withoutDate, "-vs-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Tags multi-letra conhecidas que devem ficar em maiúsculas no nome.
var knownAcronyms = map[string]struct{}{
	"CS2": {}, "CSGO": {}, "CS": {}, "NIP": {}, "OG": {}, "G2": {}, "B8": {},
	"VP": {}, "BIG": {}, "SAW": {}, "M80": {}, "NRG": {}, "TSM": {}, "EG": {},
	"KOI": {}, "HOTU": {}, "MOUZ": {}, "FURIA": {},
}

// slugToName converte um slug de time em nome exibível: acrônimos conhecidos
// em maiúsculas, o resto em title case, sem sufixos "cs2"/"cs go".
func slugToName(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := knownAcronyms[upper]; ok {
			words[i] = upper
			continue
		}
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	name := strings.Join(words, " ")
	for _, suffix := range []string{" CS2", " Cs2", " CS GO", " Cs Go"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}
