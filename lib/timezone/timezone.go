package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// force timezone to be Moscow because the seeded quote sources
// (cbr.ru, rbc.ru) publish Moscow-time data and history windows are
// computed from <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}
