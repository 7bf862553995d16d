package dto

import (
	"strings"

	"github.com/spec-kit/nikah-service/internal/service"
)

// FieldPair supports the name/value list shape some form frontends submit.
type FieldPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// WitnessRequest is one witness slot on the form.
type WitnessRequest struct {
	Name       string `json:"name"`
	FatherName string `json:"father_name"`
	BirthDate  string `json:"birth_date"`
	BirthPlace string `json:"birth_place"`
	Address    string `json:"address"`
}

// SubmissionRequest accepts either flat fields or a fields list; when both
// are present the fields list wins for the keys it names.
type SubmissionRequest struct {
	Fields []FieldPair `json:"fields"`

	Email         string `json:"email"`
	ContactNumber string `json:"contactnumber"`

	GroomName       string `json:"groom_name"`
	GroomFatherName string `json:"groom_father_name"`
	GroomBirthDate  string `json:"groom_birth_date"`
	GroomBirthPlace string `json:"groom_birth_place"`
	GroomAddress    string `json:"groom_address"`
	BrideName       string `json:"bride_name"`
	BrideFatherName string `json:"bride_father_name"`
	BrideBirthDate  string `json:"bride_birth_date"`
	BrideBirthPlace string `json:"bride_birth_place"`
	BrideAddress    string `json:"bride_address"`

	GroomRepresentative string `json:"groom_representative"`
	BrideRepresentative string `json:"bride_representative"`

	MahrAmount string `json:"mahr_amount"`
	MahrType   string `json:"mahr_type"`

	SolemnisationDate  string `json:"solemnisation_date"`
	SolemnisationTime  string `json:"solemnisation_time"`
	SolemnisationPlace string `json:"solemnisation_place"`

	Witnesses []WitnessRequest `json:"witnesses"`
}

// ToInput normalizes the request into the service payload.
func (r *SubmissionRequest) ToInput() service.SubmissionInput {
	input := service.SubmissionInput{
		Email:               r.Email,
		ContactNumber:       r.ContactNumber,
		GroomName:           r.GroomName,
		GroomFatherName:     r.GroomFatherName,
		GroomBirthDate:      r.GroomBirthDate,
		GroomBirthPlace:     r.GroomBirthPlace,
		GroomAddress:        r.GroomAddress,
		BrideName:           r.BrideName,
		BrideFatherName:     r.BrideFatherName,
		BrideBirthDate:      r.BrideBirthDate,
		BrideBirthPlace:     r.BrideBirthPlace,
		BrideAddress:        r.BrideAddress,
		GroomRepresentative: r.GroomRepresentative,
		BrideRepresentative: r.BrideRepresentative,
		MahrAmount:          r.MahrAmount,
		MahrType:            r.MahrType,
		SolemnisationDate:   r.SolemnisationDate,
		SolemnisationTime:   r.SolemnisationTime,
		SolemnisationPlace:  r.SolemnisationPlace,
	}
	for _, w := range r.Witnesses {
		input.Witnesses = append(input.Witnesses, service.WitnessInput{
			Name:       w.Name,
			FatherName: w.FatherName,
			BirthDate:  w.BirthDate,
			BirthPlace: w.BirthPlace,
			Address:    w.Address,
		})
	}
	applyFieldPairs(&input, r.Fields)
	return input
}

// applyFieldPairs overlays name/value pairs onto the input. Witness slots use
// witnessN-prefixed names (witness1name, witness2fathername, ...).
func applyFieldPairs(input *service.SubmissionInput, fields []FieldPair) {
	if len(fields) == 0 {
		return
	}

	witnesses := make([]service.WitnessInput, 4)
	witnessSeen := false
	if len(input.Witnesses) > 0 {
		copy(witnesses, input.Witnesses)
		witnessSeen = true
	}

	for _, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		value := strings.TrimSpace(f.Value)
		switch name {
		case "email":
			input.Email = value
		case "contactnumber":
			input.ContactNumber = value
		case "groomname":
			input.GroomName = value
		case "groomfathername":
			input.GroomFatherName = value
		case "groomdob", "groombirthdate":
			input.GroomBirthDate = value
		case "groombirthplace":
			input.GroomBirthPlace = value
		case "groomaddress":
			input.GroomAddress = value
		case "bridename":
			input.BrideName = value
		case "bridefathername":
			input.BrideFatherName = value
		case "bridedob", "bridebirthdate":
			input.BrideBirthDate = value
		case "bridebirthplace":
			input.BrideBirthPlace = value
		case "brideaddress":
			input.BrideAddress = value
		case "groomrepresentative":
			input.GroomRepresentative = value
		case "briderepresentative":
			input.BrideRepresentative = value
		case "mahramount":
			input.MahrAmount = value
		case "mahrtype":
			input.MahrType = value
		case "nikahdate", "solemnisationdate":
			input.SolemnisationDate = value
		case "nikahtime", "solemnisationtime":
			input.SolemnisationTime = value
		case "nikahplace", "solemnisationplace":
			input.SolemnisationPlace = value
		default:
			if idx, field, ok := witnessField(name); ok {
				witnessSeen = true
				switch field {
				case "name":
					witnesses[idx].Name = value
				case "fathername":
					witnesses[idx].FatherName = value
				case "dob", "birthdate":
					witnesses[idx].BirthDate = value
				case "birthplace":
					witnesses[idx].BirthPlace = value
				case "address":
					witnesses[idx].Address = value
				}
			}
		}
	}

	if witnessSeen {
		input.Witnesses = witnesses
	}
}

func witnessField(name string) (int, string, bool) {
	if !strings.HasPrefix(name, "witness") || len(name) < 8 {
		return 0, "", false
	}
	idx := int(name[7] - '1')
	if idx < 0 || idx > 3 {
		return 0, "", false
	}
	return idx, name[8:], true
}

// SubmissionResponse is returned after a committed submission.
type SubmissionResponse struct {
	ID                int64  `json:"id"`
	ApplicationNumber string `json:"application_number"`
}
