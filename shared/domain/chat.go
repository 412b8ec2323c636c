package domain

type Chat struct {
	Id   ChatId `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
