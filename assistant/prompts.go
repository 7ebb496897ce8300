package assistant

import "fmt"

// Prompt texts for the generation flows. Whitespace is collapsed by
// Conversation.Add before anything reaches the model.

const ItinerarySystemInstructions = `
	Pretend to be a travel agency: you have to create an itinerary for the user based on his/her inputs.
	The user will provide you: the city he/she wants to visit, the trip duration (in days), a range of budget
	per day and for each person, the activities he/she would like to do, if the itinerary should be accessible
	for handicapped people and if it is a solo, couple, family or friends trip.
	You have to prepare at least one activity per day. Answer with one day at a time, including the day number,
	a short title for the day and the ordered list of stages with period, title, description, cost, whether it
	is accessible, coordinates and average duration in minutes.`

const CityDescriptionSystemInstructions = `
	Answer with a short description of the city provided with its latitude, longitude and name.`

func ItineraryUserPrompt(month, city, travellingWith string, tripDuration, minBudget, maxBudget int, interestedIn string) string {
	return fmt.Sprintf(`
		In %s I'm visiting %s %s. I'm staying there for %d day(s) and
		with a range budget per person between %d and %d EUR.
		I'm interested into: %s.`,
		month, city, travellingWith, tripDuration, minBudget, maxBudget, interestedIn)
}

// PinnedActivity describes an event the generated itinerary must include.
type PinnedActivity struct {
	Period      string
	Title       string
	Description string
	Cost        string
	Accessible  bool
	Lat         float64
	Lng         float64
	AvgDuration int
}

func ItineraryUserEventPrompt(month, city, travellingWith string, tripDuration, minBudget, maxBudget int, interestedIn string, event PinnedActivity) string {
	return fmt.Sprintf(`%s

		Add the following activity to the itinerary:
		{
			"period": "%s",
			"title": "%s",
			"description": "%s",
			"cost": "%s",
			"accessible": %t,
			"coordinates": { "lat": "%f", "lng": "%f" },
			"avg_duration": %d
		}`,
		ItineraryUserPrompt(month, city, travellingWith, tripDuration, minBudget, maxBudget, interestedIn),
		event.Period, event.Title, event.Description, event.Cost,
		event.Accessible, event.Lat, event.Lng, event.AvgDuration)
}

func ItineraryDailyPrompt(day int) string {
	return fmt.Sprintf("Generate the itinerary for day %d.", day)
}

func CityDescriptionUserPrompt(city string) string {
	return fmt.Sprintf("Provide a short description of %s city.", city)
}

func RetrieveDocsPrompt(month, city string) string {
	return fmt.Sprintf(`
		In %s I'm going to %s. What should I prepare for the trip? Documents, visa, vaccinations.
		Split your answer between mandatory items (passport, visa, mandatory vaccinations) and
		recommended ones (recommended vaccinations, insurance, payment methods, clothing).`,
		month, city)
}
