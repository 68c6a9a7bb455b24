package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/and161185/passbox/internal/card"
	"github.com/and161185/passbox/internal/model"
)

// kindFields lists the settable fields per item kind, by wire name.
var kindFields = map[model.ItemKind][]string{
	model.KindLoginInfo:  {"website", "login_id", "password"},
	model.KindNote:       {"content"},
	model.KindCreditCard: {"card_number", "cvv", "pin", "card_type", "expiry_date", "additional_information"},
	model.KindPassport: {
		"surname", "given_names", "nationality", "place_of_birth",
		"date_of_birth", "passport_number", "issue_date", "expiry_date",
	},
}

var reMMYY = regexp.MustCompile(`^\d{2}/\d{2}$`)

func validExp(mmyy string) bool { return reMMYY.MatchString(mmyy) }

// parseSets turns repeated "field=value" flags into a field map for kind.
func parseSets(kind model.ItemKind, sets []string) (map[string]any, error) {
	allowed := map[string]bool{}
	for _, f := range kindFields[kind] {
		allowed[f] = true
	}
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want field=value", s)
		}
		if !allowed[k] {
			return nil, fmt.Errorf("%s has no field %q (fields: %s)", kind, k, strings.Join(kindFields[kind], ", "))
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("field %q set twice", k)
		}
		out[k] = v
	}
	return out, nil
}

// checkCard mirrors the server's card checks so typos fail before a round trip.
func checkCard(fields map[string]any) error {
	if v, ok := fields["card_number"].(string); ok {
		if err := card.ValidateNumber(v); err != nil {
			return err
		}
	}
	for _, f := range []string{"cvv", "pin"} {
		if v, ok := fields[f].(string); ok {
			if err := card.ValidateDigits(f, v); err != nil {
				return err
			}
		}
	}
	if v, ok := fields["expiry_date"].(string); ok && v != "" && !validExp(v) {
		return fmt.Errorf("expiry_date must be MM/YY, got %q", v)
	}
	return nil
}

// buildItem assembles the "item" object of a save or edit call.
func buildItem(rawKind, title, newTitle string, sets []string) (map[string]any, error) {
	kind, ok := model.ParseKind(rawKind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", rawKind)
	}
	fields, err := parseSets(kind, sets)
	if err != nil {
		return nil, err
	}
	if kind == model.KindCreditCard {
		if err := checkCard(fields); err != nil {
			return nil, err
		}
	}
	fields["title"] = title
	if newTitle != "" {
		fields["new_title"] = newTitle
	}
	return fields, nil
}
