package ingest

import (
	"fmt"
	"strconv"
	"time"

	"github.com/citybike/warehouse/internal/domain"
)

// Sample generates n deterministic raw trip records, hourly from
// 2023-01-01 00:00 UTC. It stands in for the real raw_rides feed in DB-less
// deployments and demos: ten start stations, eight end stations, a mix of
// user types, birth years, and gender codes.
func Sample(n int) *Source {
	src := &Source{Columns: append([]string(nil), domain.RequiredColumns...)}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= n; i++ {
		startTime := start.Add(time.Duration(i-1) * time.Hour)
		stopTime := startTime.Add(time.Hour)
		minutes := 29 + i

		userType := "Customer"
		if i%3 == 0 {
			userType = "Subscriber"
		}

		startID := i%10 + 1
		endID := i%8 + 1

		src.Records = append(src.Records, domain.RawTrip{
			domain.ColTripDuration:    strconv.Itoa(minutes * 60),
			domain.ColStartTime:       startTime.Format("2006-01-02 15:04:05"),
			domain.ColStopTime:        stopTime.Format("2006-01-02 15:04:05"),
			domain.ColStartStationID:  strconv.Itoa(startID),
			domain.ColStartName:       fmt.Sprintf("Station %d", startID),
			domain.ColStartLatitude:   strconv.FormatFloat(40.7+float64(startID-1)*0.01, 'f', 2, 64),
			domain.ColStartLongitude:  strconv.FormatFloat(-74.0-float64(startID-1)*0.01, 'f', 2, 64),
			domain.ColEndStationID:    strconv.Itoa(endID),
			domain.ColEndName:         fmt.Sprintf("Station %d", endID),
			domain.ColEndLatitude:     strconv.FormatFloat(40.7+float64(endID-1)*0.01, 'f', 2, 64),
			domain.ColEndLongitude:    strconv.FormatFloat(-74.0-float64(endID-1)*0.01, 'f', 2, 64),
			domain.ColBikeID:          strconv.Itoa(i),
			domain.ColUserType:        userType,
			domain.ColBirthYear:       strconv.Itoa(1980 + i%40),
			domain.ColGender:          strconv.Itoa(i % 3),
			domain.ColTripDurationMin: strconv.Itoa(minutes),
		})
	}
	return src
}
