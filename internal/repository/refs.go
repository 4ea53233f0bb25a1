package repository

import "encoding/json"

// Denormalized child-reference arrays (bar.salles, match.parties,
// partie.streams, equipe.membres) live in JSON columns. The helpers below
// are the single codec for those columns; nil always encodes as [] so the
// columns never hold SQL NULL.

func encodeRefs(refs []string) ([]byte, error) {
	if refs == nil {
		refs = []string{}
	}
	return json.Marshal(refs)
}

func decodeRefs(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, nil
}
