package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() *NdaDetails {
	return &NdaDetails{
		BankName:            "Alpha Bank",
		BankAddress:         "1 Main St",
		BankRegNumber:       "123456",
		BankContactName:     "Ana Petrova",
		BankContactPosition: "CISO",
		ReceiverName:        "Intec Systems",
		ReceiverAddress:     "2 Side St",
		ReceiverRegNumber:   "654321",
		ReceiverContactName: "Marko Stojanov",
		ReceiverContactPos:  "Consultant",
		NdaPurpose:          "compliance assessment",
		NdaDurationYears:    "3",
		NdaEffectiveDate:    "2024-01-01",
	}
}

func TestMissingFields(t *testing.T) {
	t.Run("complete details have no missing fields", func(t *testing.T) {
		assert.Empty(t, validDetails().MissingFields())
	})

	t.Run("each required field is flagged when empty", func(t *testing.T) {
		for _, field := range RequiredNdaFields {
			d := validDetails()
			m := d.FieldMap()
			require.NotEmpty(t, m[field])

			switch field {
			case "bankName":
				d.BankName = ""
			case "bankAddress":
				d.BankAddress = "   "
			case "bankRegNumber":
				d.BankRegNumber = ""
			case "bankContactName":
				d.BankContactName = ""
			case "bankContactPosition":
				d.BankContactPosition = ""
			case "receiverName":
				d.ReceiverName = ""
			case "receiverAddress":
				d.ReceiverAddress = ""
			case "receiverRegNumber":
				d.ReceiverRegNumber = ""
			case "receiverContactName":
				d.ReceiverContactName = ""
			case "receiverContactPosition":
				d.ReceiverContactPos = ""
			case "ndaPurpose":
				d.NdaPurpose = ""
			case "ndaDurationYears":
				d.NdaDurationYears = ""
			case "ndaEffectiveDate":
				d.NdaEffectiveDate = ""
			}

			assert.Equal(t, []string{field}, d.MissingFields(), "field %s", field)
		}
	})

	t.Run("nil details miss everything", func(t *testing.T) {
		var d *NdaDetails
		assert.Len(t, d.MissingFields(), 13)
	})
}

func TestSurveyStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusSubmitted.Valid())
	assert.True(t, StatusReviewed.Valid())
	assert.False(t, SurveyStatus("archived").Valid())
	assert.False(t, SurveyStatus("").Valid())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.TotalItems)
	assert.Equal(t, 10, p.ItemsPerPage)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	first := NewPagination(1, 10, 5)
	assert.Equal(t, 1, first.TotalPages)
	assert.False(t, first.HasNextPage)
	assert.False(t, first.HasPrevPage)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}

func TestAdminPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	user := &AdminUser{Username: "admin", PasswordHash: hash, IsActive: true}
	assert.True(t, user.CheckPassword("s3cret"))
	assert.False(t, user.CheckPassword("wrong"))

	user.IsActive = false
	assert.False(t, user.CheckPassword("s3cret"))
}
