package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytracker/internal/core"
)

const bankStatement = `
OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>COFFEE HOUSE
<MEMO>Card 1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>2100.00
<FITID>2024012501
<NAME>ACME PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240126120000[0:GMT]
<TRNAMT>0.00
<FITID>2024012601
<NAME>BALANCE CHECK
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

type fakeRecorder struct {
	recorded []core.Transaction
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = int64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, t)
	return t, nil
}

func TestParseOFX(t *testing.T) {
	txs, err := ParseOFX(strings.NewReader(bankStatement))
	require.NoError(t, err)
	require.Len(t, txs, 2, "zero-amount line should be skipped")

	debit := txs[0]
	assert.Equal(t, "COFFEE HOUSE", debit.Title)
	assert.Equal(t, "Card 1234", debit.Description)
	assert.Equal(t, core.KindExpense, debit.Kind)
	assert.Equal(t, "25.50", debit.Amount.String())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), debit.Date)
	assert.Nil(t, debit.CategoryID)

	credit := txs[1]
	assert.Equal(t, "ACME PAYROLL", credit.Title)
	assert.Equal(t, core.KindIncome, credit.Kind)
	assert.Equal(t, "2100.00", credit.Amount.String())
}

func TestParseOFXInvalid(t *testing.T) {
	_, err := ParseOFX(strings.NewReader("not an ofx file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse OFX file")
}

func TestPreprocess(t *testing.T) {
	in := "\n\n  <SEVERITY>Warn</SEVERITY>\n<BANKACCTFROM\n"
	out := preprocess(in)
	assert.True(t, strings.HasPrefix(out, "<SEVERITY>WARN</SEVERITY>"))
	assert.Contains(t, out, "<BANKACCTFROM>")
}

func TestImportOFX(t *testing.T) {
	rec := &fakeRecorder{}
	res, err := ImportOFX(context.Background(), rec, "u1", strings.NewReader(bankStatement))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Rejected)
	for _, tx := range rec.recorded {
		assert.Equal(t, "u1", tx.UserID)
	}
}

func TestImportOFXCollectsValidationFailures(t *testing.T) {
	rec := &fakeRecorder{err: core.ValidationErrors{"amount": "amount is too large"}}
	res, err := ImportOFX(context.Background(), rec, "u1", strings.NewReader(bankStatement))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Imported)
	require.Len(t, res.Rejected, 2)
	assert.Contains(t, res.Rejected[0].Error(), "COFFEE HOUSE on 2024-01-15")
}

func TestImportOFXStopsOnStoreError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk I/O error")}
	_, err := ImportOFX(context.Background(), rec, "u1", strings.NewReader(bankStatement))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestImportOFXRejectsSubCentAmounts(t *testing.T) {
	statement := strings.Replace(bankStatement, "<TRNAMT>-25.50", "<TRNAMT>-25.505", 1)
	rec := &fakeRecorder{}
	res, err := ImportOFX(context.Background(), rec, "u1", strings.NewReader(statement))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Rejected, 1)
	assert.Contains(t, res.Rejected[0].Error(), "COFFEE HOUSE")
	assert.Contains(t, res.Rejected[0].Error(), core.ErrAmountPrecision.Error())
	require.Len(t, rec.recorded, 1)
	assert.Equal(t, "ACME PAYROLL", rec.recorded[0].Title)
}

func TestConvertTruncatesLongTitlesByCharacter(t *testing.T) {
	var amt ofxgo.Amount
	_, ok := amt.SetString("-12.30")
	require.True(t, ok)
	tx := ofxgo.Transaction{
		TrnAmt:   amt,
		Name:     ofxgo.String(strings.Repeat("ร้าน", 100)),
		DtPosted: ofxgo.Date{Time: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)},
	}

	got, ok := convert(tx)
	require.True(t, ok)
	assert.Equal(t, core.MaxTitleLength, len([]rune(got.Title)))
	assert.NoError(t, got.Validate())
	assert.Equal(t, "12.30", got.Amount.String())
}
