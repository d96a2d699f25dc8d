package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type User struct {
	Id          int       `json:"id" gorm:"primarykey"`
	Username    string    `json:"username" gorm:"type:char(96);uniqueIndex"`
	Password    string    `json:"password" gorm:"type:char(96)"` // md5 hex
	IsAdmin     bool      `json:"is_admin" gorm:"default:false"`
	CreatedTime time.Time `json:"created_time" gorm:"datetime;autoCreateTime"`
}

func CreateUser(user *User) error {
	return DB.Create(user).Error
}

func GetUserById(id int) (*User, error) {
	var user User
	err := DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(username string) (*User, error) {
	var user User
	err := DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func UpdateUser(user *User) error {
	return DB.Save(user).Error
}
