package model

import "time"

// User — владелец файлов. Аутентификация и выдача токенов — на стороне
// Identity Provider; локальная запись создаётся автоматически при первой
// загрузке файла. Удаление пользователя каскадно удаляет его файлы,
// записи логов и наборы находок.
type User struct {
	// ID — идентификатор пользователя в IdP (sub из JWT)
	ID string
	// Username — preferred_username из JWT
	Username string
	// Email — email из JWT
	Email string
	// CreatedAt — время создания локальной записи
	CreatedAt time.Time
}
