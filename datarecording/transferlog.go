package datarecording

import (
	"github.com/cloudgridlab/cloudgrid/sim"
	"github.com/cloudgridlab/cloudgrid/vnet"
)

// A TransferRecord is one row per routed payload.
type TransferRecord struct {
	ID           string
	OriginHost   string
	Src          string
	Dst          string
	SizeUnits    float64
	DispatchTime float64
	Delay        float64
	Kind         string
}

// TransferKindLocal marks a payload delivered between co-resident
// workloads.
const TransferKindLocal = "local"

// TransferKindRemote marks a payload routed through the switch.
const TransferKindRemote = "remote"

// A TransferLogger is a hook that records every payload a dispatcher
// routes. Attach it to a host's dispatcher with AcceptHook.
type TransferLogger struct {
	recorder  DataRecorder
	tableName string
}

// NewTransferLogger creates a TransferLogger that writes into the given
// table, creating the table on the recorder.
func NewTransferLogger(
	recorder DataRecorder,
	tableName string,
) *TransferLogger {
	recorder.CreateTable(tableName, TransferRecord{})

	return &TransferLogger{
		recorder:  recorder,
		tableName: tableName,
	}
}

// NewTransferLoggerWithTable creates a TransferLogger for a table that
// has already been created, so that multiple dispatchers can share one
// table.
func NewTransferLoggerWithTable(
	recorder DataRecorder,
	tableName string,
) *TransferLogger {
	return &TransferLogger{
		recorder:  recorder,
		tableName: tableName,
	}
}

// Func records local deliveries and remote dispatches.
func (l *TransferLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case vnet.HookPosLocalDeliver:
		pkt := ctx.Item.(*vnet.Payload)
		envelope := ctx.Detail.(*vnet.RoutingEnvelope)

		l.recorder.InsertData(l.tableName, TransferRecord{
			ID:           pkt.ID,
			OriginHost:   envelope.OriginHost,
			Src:          pkt.Src,
			Dst:          pkt.Dst,
			SizeUnits:    pkt.SizeUnits,
			DispatchTime: float64(pkt.RecvTime),
			Delay:        0,
			Kind:         TransferKindLocal,
		})

	case vnet.HookPosRemoteDispatch:
		pkt := ctx.Item.(*vnet.Payload)
		detail := ctx.Detail.(vnet.RemoteDispatchDetail)

		l.recorder.InsertData(l.tableName, TransferRecord{
			ID:           pkt.ID,
			OriginHost:   detail.Envelope.OriginHost,
			Src:          pkt.Src,
			Dst:          pkt.Dst,
			SizeUnits:    pkt.SizeUnits,
			DispatchTime: float64(detail.Envelope.DispatchTime),
			Delay:        float64(detail.Delay),
			Kind:         TransferKindRemote,
		})
	}
}
