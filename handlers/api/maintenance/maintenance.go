package maintenance

import (
	"net/http"

	"sharehub/broker"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// HandleSweep reconciles the deletion ledger against the content store and
// reports what was deleted and what must wait for a later sweep.
func HandleSweep(ledger *broker.DeletionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := ledger.Sweep(r.Context())
		logrus.WithFields(logrus.Fields{
			"deleted": len(result.Deleted),
			"failed":  len(result.Failed),
		}).Info("Maintenance sweep requested")
		render.JSON(w, r, result)
	}
}

// HandlePendingDeletions lists the content ids currently ledgered.
func HandlePendingDeletions(ledger *broker.DeletionLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{"pending": ledger.Pending()})
	}
}

// HandleListRooms reports every active room.
func HandleListRooms(registry *broker.RoomRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, registry.Rooms())
	}
}
