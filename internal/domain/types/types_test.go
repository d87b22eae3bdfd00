package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/salesdash/internal/domain/types"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTotal(t *testing.T) {
	Convey("Given a zero Total", t, func() {
		var total types.Total

		Convey("When adding two observations", func() {
			total = total.Add(2, decimal.NewFromInt(100))
			total = total.Add(1, decimal.RequireFromString("300.25"))

			Convey("Then count and acv should be summed exactly", func() {
				So(total.Count, ShouldEqual, 3)
				So(total.ACV.String(), ShouldEqual, "400.25")
			})
		})

		Convey("When nothing was added", func() {
			Convey("Then acv should read as zero", func() {
				So(total.ACV.IsZero(), ShouldBeTrue)
				So(total.ACV.String(), ShouldEqual, "0")
			})
		})
	})
}

func TestSalesRecordJSON(t *testing.T) {
	Convey("Given a sales record", t, func() {
		rec := types.SalesRecord{
			Quarter:  "2023-Q3",
			Category: "Manufacturing",
			Count:    4,
			ACV:      decimal.RequireFromString("1234.5"),
		}

		Convey("When encoding it", func() {
			b, err := json.Marshal(rec)

			Convey("Then acv should be a bare number under canonical keys", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"closed_fiscal_quarter":"2023-Q3","category":"Manufacturing","count":4,"acv":1234.5}`)
			})
		})

		Convey("When decoding a record with a quoted acv", func() {
			var out types.SalesRecord
			err := json.Unmarshal([]byte(`{"closed_fiscal_quarter":"2023-Q4","category":"Retail","count":1,"acv":"99.99"}`), &out)

			Convey("Then it should still parse the amount", func() {
				So(err, ShouldBeNil)
				So(out.ACV.String(), ShouldEqual, "99.99")
			})
		})
	})
}

func TestDatasetJSON(t *testing.T) {
	Convey("Given a dataset with a digest", t, func() {
		ds := types.Dataset{Group: "team", Sales: []types.SalesRecord{}, Digest: 42}

		Convey("Then the digest should not be serialised", func() {
			b, err := json.Marshal(ds)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"group":"team","sales":[]}`)
		})
	})
}
