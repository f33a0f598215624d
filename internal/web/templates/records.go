package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/techbeat/internal/forms"
)

// recordDateLayout matches the short month form of the records table.
const recordDateLayout = "Jan 2, 2006"

// RecordsState is what the personal info page renders. When Editing is set
// the form is prefilled from record Index and a submit replaces it.
type RecordsState struct {
	Form    forms.PersonalInfo
	Result  forms.ValidationResult
	Editing bool
	Index   int
	Records []forms.PersonalInfo
}

// RecordsPage renders the personal info page.
func RecordsPage(st RecordsState) templ.Component {
	return Layout("Personal Info", RecordsPartial(st))
}

// RecordsPartial renders the form and, once anything was submitted, the
// records table.
func RecordsPartial(st RecordsState) templ.Component {
	return component(func(ctx context.Context, hw *writer) {
		p := st.Form
		hw.raw(`<section id="records"`)
		hw.attr("hx-target", "#records")
		hw.attr("hx-swap", "outerHTML")
		hw.raw(`><h1>Personal Information</h1>`)
		hw.raw(`<form id="personal-info-form" method="post" action="/api/records" novalidate`)
		hw.attr("hx-post", "/api/records")
		hw.attr("hx-disabled-elt", "find button")
		hw.raw(">")
		if st.Editing {
			hw.raw(`<input type="hidden" name="index"`)
			hw.attr("value", strconv.Itoa(st.Index))
			hw.raw(">")
		}

		textField(hw, st.Result, "firstName", "First Name", "text", p.FirstName)
		textField(hw, st.Result, "lastName", "Last Name", "text", p.LastName)
		textField(hw, st.Result, "email", "Email", "email", p.Email)
		textField(hw, st.Result, "phone", "Phone", "tel", p.Phone)
		dob := ""
		if !p.DateOfBirth.IsZero() {
			dob = p.DateOfBirth.Format(forms.DateLayout)
		}
		textField(hw, st.Result, "dateOfBirth", "Date of Birth", "date", dob)
		textField(hw, st.Result, "address", "Address", "text", p.Address)
		textField(hw, st.Result, "city", "City", "text", p.City)
		textField(hw, st.Result, "state", "State", "text", p.State)
		textField(hw, st.Result, "postalCode", "Postal Code", "text", p.PostalCode)
		textField(hw, st.Result, "country", "Country", "text", p.Country)

		if st.Editing {
			hw.raw(`<button type="submit" id="button-submit" data-testid="button-submit">Update Record</button>`)
			hw.raw(`<button type="button" id="button-cancel" hx-get="/api/records">Cancel</button>`)
		} else {
			hw.raw(`<button type="submit" id="button-submit" data-testid="button-submit">Submit</button>`)
		}
		hw.raw("</form>")

		if len(st.Records) > 0 {
			recordsTable(hw, st.Records)
		}
		hw.raw("</section>")
	})
}

func textField(hw *writer, res forms.ValidationResult, name, label, kind, value string) {
	field(hw, res, name, label, func() {
		hw.raw("<input")
		hw.attr("id", name)
		hw.attr("name", name)
		hw.attr("type", kind)
		hw.attr("data-testid", "input-"+name)
		hw.attr("value", value)
		hw.raw(">")
	})
}

func recordsTable(hw *writer, records []forms.PersonalInfo) {
	hw.raw(`<h2>Submitted Records</h2><p>View and manage your submitted records</p>`)
	hw.raw(`<table data-testid="records-table"><thead><tr>`)
	hw.raw("<th>Name</th><th>Email</th><th>Phone</th><th>Date of Birth</th><th>Address</th><th>Actions</th>")
	hw.raw("</tr></thead><tbody>")
	for i, rec := range records {
		idx := strconv.Itoa(i)
		hw.raw("<tr")
		hw.attr("data-testid", "record-row-"+idx)
		hw.raw("><td>")
		hw.text(rec.FirstName + " " + rec.LastName)
		hw.raw("</td><td>")
		hw.text(rec.Email)
		hw.raw("</td><td>")
		hw.text(rec.Phone)
		hw.raw("</td><td>")
		hw.text(rec.DateOfBirth.Format(recordDateLayout))
		hw.raw("</td><td>")
		hw.text(rec.Address + ", " + rec.City + ", " + rec.State + " " + rec.PostalCode + ", " + rec.Country)
		hw.raw("</td><td>")
		hw.raw(`<button type="button"`)
		hw.attr("id", "button-edit-"+idx)
		hw.attr("hx-get", "/api/records/"+idx)
		hw.raw(">Edit</button>")
		hw.raw(`<button type="button"`)
		hw.attr("id", "button-delete-"+idx)
		hw.attr("hx-delete", "/api/records/"+idx)
		hw.raw(">Delete</button>")
		hw.raw("</td></tr>")
	}
	hw.raw("</tbody></table>")
}
