package dtc

import "google.golang.org/protobuf/encoding/protowire"

// Historical price data request/response messages.

type HistoricalPriceDataRequest struct {
	RequestID          int32
	Symbol             string
	Exchange           string
	RecordInterval     int32
	StartDateTime      int64
	EndDateTime        int64
	MaxDaysToReturn    uint32
	UseZLibCompression bool
}

func (m *HistoricalPriceDataRequest) Type() MessageType { return TypeHistoricalPriceDataRequest }

func (m *HistoricalPriceDataRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.Symbol)
	b = appendString(b, 3, m.Exchange)
	b = appendInt32(b, 4, m.RecordInterval)
	b = appendInt64(b, 5, m.StartDateTime)
	b = appendInt64(b, 6, m.EndDateTime)
	b = appendUint32(b, 7, m.MaxDaysToReturn)
	b = appendBool(b, 8, m.UseZLibCompression)
	return b
}

func (m *HistoricalPriceDataRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.Symbol, data, err = wireString(data, typ)
		case 3:
			m.Exchange, data, err = wireString(data, typ)
		case 4:
			m.RecordInterval, data, err = wireInt32(data, typ)
		case 5:
			m.StartDateTime, data, err = wireInt64(data, typ)
		case 6:
			m.EndDateTime, data, err = wireInt64(data, typ)
		case 7:
			m.MaxDaysToReturn, data, err = wireUint32(data, typ)
		case 8:
			m.UseZLibCompression, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalPriceDataResponseHeader struct {
	RequestID              int32
	RecordInterval         int32
	UseZLibCompression     bool
	NoRecordsToReturn      bool
	IntToFloatPriceDivisor float64
}

func (m *HistoricalPriceDataResponseHeader) Type() MessageType {
	return TypeHistoricalPriceDataResponseHeader
}

func (m *HistoricalPriceDataResponseHeader) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt32(b, 2, m.RecordInterval)
	b = appendBool(b, 3, m.UseZLibCompression)
	b = appendBool(b, 4, m.NoRecordsToReturn)
	b = appendDouble(b, 5, m.IntToFloatPriceDivisor)
	return b
}

func (m *HistoricalPriceDataResponseHeader) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.RecordInterval, data, err = wireInt32(data, typ)
		case 3:
			m.UseZLibCompression, data, err = wireBool(data, typ)
		case 4:
			m.NoRecordsToReturn, data, err = wireBool(data, typ)
		case 5:
			m.IntToFloatPriceDivisor, data, err = wireDouble(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalPriceDataReject struct {
	RequestID          int32
	RejectText         string
	RejectReasonCode   int32
	RetryTimeInSeconds uint32
}

func (m *HistoricalPriceDataReject) Type() MessageType { return TypeHistoricalPriceDataReject }

func (m *HistoricalPriceDataReject) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.RejectText)
	b = appendInt32(b, 3, m.RejectReasonCode)
	b = appendUint32(b, 4, m.RetryTimeInSeconds)
	return b
}

func (m *HistoricalPriceDataReject) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.RejectText, data, err = wireString(data, typ)
		case 3:
			m.RejectReasonCode, data, err = wireInt32(data, typ)
		case 4:
			m.RetryTimeInSeconds, data, err = wireUint32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalPriceDataRecordResponse struct {
	RequestID     int32
	StartDateTime int64
	OpenPrice     float64
	HighPrice     float64
	LowPrice      float64
	LastPrice     float64
	Volume        float64
	NumTrades     uint32
	BidVolume     float64
	AskVolume     float64
	IsFinalRecord bool
}

func (m *HistoricalPriceDataRecordResponse) Type() MessageType {
	return TypeHistoricalPriceDataRecordResponse
}

func (m *HistoricalPriceDataRecordResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt64(b, 2, m.StartDateTime)
	b = appendDouble(b, 3, m.OpenPrice)
	b = appendDouble(b, 4, m.HighPrice)
	b = appendDouble(b, 5, m.LowPrice)
	b = appendDouble(b, 6, m.LastPrice)
	b = appendDouble(b, 7, m.Volume)
	b = appendUint32(b, 8, m.NumTrades)
	b = appendDouble(b, 9, m.BidVolume)
	b = appendDouble(b, 10, m.AskVolume)
	b = appendBool(b, 11, m.IsFinalRecord)
	return b
}

func (m *HistoricalPriceDataRecordResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.StartDateTime, data, err = wireInt64(data, typ)
		case 3:
			m.OpenPrice, data, err = wireDouble(data, typ)
		case 4:
			m.HighPrice, data, err = wireDouble(data, typ)
		case 5:
			m.LowPrice, data, err = wireDouble(data, typ)
		case 6:
			m.LastPrice, data, err = wireDouble(data, typ)
		case 7:
			m.Volume, data, err = wireDouble(data, typ)
		case 8:
			m.NumTrades, data, err = wireUint32(data, typ)
		case 9:
			m.BidVolume, data, err = wireDouble(data, typ)
		case 10:
			m.AskVolume, data, err = wireDouble(data, typ)
		case 11:
			m.IsFinalRecord, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalPriceDataTickRecordResponse struct {
	RequestID     int32
	DateTime      float64
	AtBidOrAsk    AtBidOrAsk
	Price         float64
	Volume        float64
	IsFinalRecord bool
}

func (m *HistoricalPriceDataTickRecordResponse) Type() MessageType {
	return TypeHistoricalPriceDataTickRecordResponse
}

func (m *HistoricalPriceDataTickRecordResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendDouble(b, 2, m.DateTime)
	b = appendInt32(b, 3, int32(m.AtBidOrAsk))
	b = appendDouble(b, 4, m.Price)
	b = appendDouble(b, 5, m.Volume)
	b = appendBool(b, 6, m.IsFinalRecord)
	return b
}

func (m *HistoricalPriceDataTickRecordResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.DateTime, data, err = wireDouble(data, typ)
		case 3:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.AtBidOrAsk = AtBidOrAsk(v)
		case 4:
			m.Price, data, err = wireDouble(data, typ)
		case 5:
			m.Volume, data, err = wireDouble(data, typ)
		case 6:
			m.IsFinalRecord, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Logoff tells the peer the connection is about to close.
type Logoff struct {
	Reason         string
	DoNotReconnect bool
}

func (m *Logoff) Type() MessageType { return TypeLogoff }

func (m *Logoff) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Reason)
	b = appendBool(b, 2, m.DoNotReconnect)
	return b
}

func (m *Logoff) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Reason, data, err = wireString(data, typ)
		case 2:
			m.DoNotReconnect, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
