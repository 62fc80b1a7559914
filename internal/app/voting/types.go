package voting

type AddDestinationInput struct {
	Name    string
	Country string
	IATA    string
}
