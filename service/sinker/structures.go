// Package sinker bridges decoded records to external collaborators:
// relational tables via database/sql and redis pub/sub channels. The
// record codec itself stays persistence-free.
package sinker

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	ftdc "github.com/frozenpine/ftdc4go"
)

type MsgFormat uint8

func (msgFmt *MsgFormat) Set(value string) error {
	switch value {
	case "wire":
		*msgFmt = MsgWire
	case "json":
		*msgFmt = MsgJson
	case "msgpack":
		*msgFmt = MsgPack
	default:
		return errors.New("invalid msg format")
	}

	return nil
}

const (
	MsgWire MsgFormat = iota // wire
	MsgJson                  // json
	MsgPack                  // msgpack
)

func (msgFmt MsgFormat) String() string {
	switch msgFmt {
	case MsgWire:
		return "wire"
	case MsgJson:
		return "json"
	case MsgPack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Marshaller returns the marshal func for format. MsgWire re-encodes
// through enc, the other formats marshal the record map directly.
func Marshaller(
	format MsgFormat, enc func(ftdc.Record) ([]byte, error),
) (func(ftdc.Record) ([]byte, error), error) {
	switch format {
	case MsgWire:
		if enc == nil {
			return nil, errors.New("wire format requires an encoder")
		}

		return enc, nil
	case MsgJson:
		return func(v ftdc.Record) ([]byte, error) {
			return json.Marshal(v)
		}, nil
	case MsgPack:
		return func(v ftdc.Record) ([]byte, error) {
			return msgpack.Marshal(map[string]any(v))
		}, nil
	default:
		return nil, errors.Errorf("unsupported message format: %d", format)
	}
}

// DynamicBalance computes an account's dynamic balance from its
// settled and floating components.
func DynamicBalance(
	preBalance, deposit, withdraw, closeProfit, positionProfit, commission float64,
) float64 {
	return preBalance + deposit - withdraw + closeProfit + positionProfit - commission
}

// DepthRow is a flattened depth tick, ready for a relational table or
// a serialized message channel.
type DepthRow struct {
	TradingDay     string  `sql:"trading_day" json:"trading_day" msgpack:"trading_day"`
	InstrumentID   string  `sql:"instrument_id" json:"instrument_id" msgpack:"instrument_id"`
	UpdateTime     string  `sql:"update_time" json:"update_time" msgpack:"update_time"`
	UpdateMillisec int32   `sql:"update_millisec" json:"update_millisec" msgpack:"update_millisec"`
	LastPrice      float64 `sql:"last_price" json:"last_price" msgpack:"last_price"`
	Volume         int32   `sql:"volume" json:"volume" msgpack:"volume"`
	Turnover       float64 `sql:"turnover" json:"turnover" msgpack:"turnover"`
	OpenInterest   float64 `sql:"open_interest" json:"open_interest" msgpack:"open_interest"`
	BidPrice       float64 `sql:"bid_price" json:"bid_price" msgpack:"bid_price"`
	BidVolume      int32   `sql:"bid_volume" json:"bid_volume" msgpack:"bid_volume"`
	AskPrice       float64 `sql:"ask_price" json:"ask_price" msgpack:"ask_price"`
	AskVolume      int32   `sql:"ask_volume" json:"ask_volume" msgpack:"ask_volume"`
}

// FromRecord flattens a decoded DepthMarketData record.
func (row *DepthRow) FromRecord(record ftdc.Record) (err error) {
	if row.TradingDay, err = record.GetString("TradingDay"); err != nil {
		return
	}

	if row.InstrumentID, err = record.GetString("InstrumentID"); err != nil {
		return
	}

	if row.UpdateTime, err = record.GetString("UpdateTime"); err != nil {
		return
	}

	if row.UpdateMillisec, err = record.GetInt32("UpdateMillisec"); err != nil {
		return
	}

	if row.LastPrice, err = record.GetDouble("LastPrice"); err != nil {
		return
	}

	if row.Volume, err = record.GetInt32("Volume"); err != nil {
		return
	}

	if row.Turnover, err = record.GetDouble("Turnover"); err != nil {
		return
	}

	if row.OpenInterest, err = record.GetDouble("OpenInterest"); err != nil {
		return
	}

	if row.BidPrice, err = record.GetDouble("BidPrice1"); err != nil {
		return
	}

	if row.BidVolume, err = record.GetInt32("BidVolume1"); err != nil {
		return
	}

	if row.AskPrice, err = record.GetDouble("AskPrice1"); err != nil {
		return
	}

	row.AskVolume, err = record.GetInt32("AskVolume1")

	return
}

// AccountRow is a flattened trading account snapshot.
type AccountRow struct {
	TradingDay string  `sql:"trading_day" json:"trading_day" msgpack:"trading_day"`
	BrokerID   string  `sql:"broker_id" json:"broker_id" msgpack:"broker_id"`
	AccountID  string  `sql:"account_id" json:"account_id" msgpack:"account_id"`
	PreBalance float64 `sql:"pre_balance" json:"pre_balance" msgpack:"pre_balance"`
	Balance    float64 `sql:"balance" json:"balance" msgpack:"balance"`
	Deposit    float64 `sql:"deposit" json:"deposit" msgpack:"deposit"`
	Withdraw   float64 `sql:"withdraw" json:"withdraw" msgpack:"withdraw"`
	Profit     float64 `sql:"profit" json:"profit" msgpack:"profit"`
	Fee        float64 `sql:"fee" json:"fee" msgpack:"fee"`
	Margin     float64 `sql:"margin" json:"margin" msgpack:"margin"`
	Available  float64 `sql:"available" json:"available" msgpack:"available"`
}

// FromRecord flattens a decoded TradingAccount record. Balance is the
// dynamic balance, profit, fee and margin fold their frozen parts in.
func (row *AccountRow) FromRecord(record ftdc.Record) (err error) {
	if row.TradingDay, err = record.GetString("TradingDay"); err != nil {
		return
	}

	if row.BrokerID, err = record.GetString("BrokerID"); err != nil {
		return
	}

	if row.AccountID, err = record.GetString("AccountID"); err != nil {
		return
	}

	if row.PreBalance, err = record.GetDouble("PreBalance"); err != nil {
		return
	}

	if row.Deposit, err = record.GetDouble("Deposit"); err != nil {
		return
	}

	if row.Withdraw, err = record.GetDouble("Withdraw"); err != nil {
		return
	}

	if row.Available, err = record.GetDouble("Available"); err != nil {
		return
	}

	var (
		closeProfit, positionProfit          float64
		commission, frozenCommission         float64
		currMargin, frozenMargin, frozenCash float64
	)

	if closeProfit, err = record.GetDouble("CloseProfit"); err != nil {
		return
	}

	if positionProfit, err = record.GetDouble("PositionProfit"); err != nil {
		return
	}

	if commission, err = record.GetDouble("Commission"); err != nil {
		return
	}

	if frozenCommission, err = record.GetDouble("FrozenCommission"); err != nil {
		return
	}

	if currMargin, err = record.GetDouble("CurrMargin"); err != nil {
		return
	}

	if frozenMargin, err = record.GetDouble("FrozenMargin"); err != nil {
		return
	}

	if frozenCash, err = record.GetDouble("FrozenCash"); err != nil {
		return
	}

	row.Profit = closeProfit + positionProfit
	row.Fee = commission + frozenCommission
	row.Margin = currMargin + frozenMargin + frozenCash
	row.Balance = DynamicBalance(
		row.PreBalance, row.Deposit, row.Withdraw,
		closeProfit, positionProfit, commission,
	)

	return
}
